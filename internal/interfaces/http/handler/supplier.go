package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsupplier "github.com/condoledger/backend/internal/application/supplier"
	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/condoledger/backend/internal/domain/supplier"
	"github.com/condoledger/backend/internal/interfaces/http/dto"
)

// SupplierHandler exposes supplier invoice operations.
type SupplierHandler struct {
	BaseHandler
	invoiceService *appsupplier.InvoiceService
}

// NewSupplierHandler creates a supplier handler.
func NewSupplierHandler(invoiceService *appsupplier.InvoiceService) *SupplierHandler {
	return &SupplierHandler{invoiceService: invoiceService}
}

// RegisterInvoice handles POST /invoices
func (h *SupplierHandler) RegisterInvoice(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.RegisterInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyVESFromString(req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		h.BadRequest(c, "issue_date must be in YYYY-MM-DD format")
		return
	}

	serviceReq := appsupplier.RegisterInvoiceRequest{
		TenantID:      tenantID,
		InvoiceNumber: req.InvoiceNumber,
		CondominiumID: uuid.MustParse(req.CondominiumID),
		SupplierID:    uuid.MustParse(req.SupplierID),
		SupplierName:  req.SupplierName,
		Concept:       req.Concept,
		Amount:        amount,
		IssueDate:     issueDate,
	}
	if req.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			h.BadRequest(c, "due_date must be in YYYY-MM-DD format")
			return
		}
		serviceReq.DueDate = &dueDate
	}
	if req.ExpenseMonth != 0 && req.ExpenseYear != 0 {
		period, err := valueobject.NewBillingPeriod(req.ExpenseMonth, req.ExpenseYear)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		serviceReq.BookAsExpense = &period
		serviceReq.Category = billing.ExpenseCategory(req.ExpenseCategory)
	}

	invoice, err := h.invoiceService.RegisterInvoice(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// PayInvoice handles POST /invoices/:id/payments
func (h *SupplierHandler) PayInvoice(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	invoiceID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyVESFromString(req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	invoice, err := h.invoiceService.PayInvoice(c.Request.Context(), appsupplier.PayInvoiceRequest{
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Amount:    amount,
		Method:    req.Method,
		Reference: req.Reference,
		Remark:    req.Remark,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// CancelInvoice handles POST /invoices/:id/cancel
func (h *SupplierHandler) CancelInvoice(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	invoiceID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), tenantID, invoiceID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// GetInvoice handles GET /invoices/:id
func (h *SupplierHandler) GetInvoice(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	invoiceID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListInvoices handles GET /invoices
func (h *SupplierHandler) ListInvoices(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	req := dto.ListInvoicesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := supplier.InvoiceFilter{Filter: toSharedFilter(req.ListRequest)}
	if req.CondominiumID != "" {
		id := uuid.MustParse(req.CondominiumID)
		filter.CondominiumID = &id
	}
	if req.SupplierID != "" {
		id := uuid.MustParse(req.SupplierID)
		filter.SupplierID = &id
	}
	if req.Status != "" {
		status := supplier.InvoiceStatus(req.Status)
		filter.Status = &status
	}
	if req.Overdue != nil {
		filter.Overdue = req.Overdue
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
