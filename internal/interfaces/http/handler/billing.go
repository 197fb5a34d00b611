package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appbilling "github.com/condoledger/backend/internal/application/billing"
	"github.com/condoledger/backend/internal/infrastructure/logger"
	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/condoledger/backend/internal/interfaces/http/dto"
)

// BillingHandler exposes receipt, payment and expense operations.
type BillingHandler struct {
	BaseHandler
	receiptService    *appbilling.ReceiptService
	paymentService    *appbilling.PaymentService
	settlementService *appbilling.SettlementService
	expenseService    *appbilling.ExpenseService
}

// NewBillingHandler creates a billing handler.
func NewBillingHandler(
	receiptService *appbilling.ReceiptService,
	paymentService *appbilling.PaymentService,
	settlementService *appbilling.SettlementService,
	expenseService *appbilling.ExpenseService,
) *BillingHandler {
	return &BillingHandler{
		receiptService:    receiptService,
		paymentService:    paymentService,
		settlementService: settlementService,
		expenseService:    expenseService,
	}
}

// GenerateReceipts handles POST /condominiums/:id/receipts/generate
func (h *BillingHandler) GenerateReceipts(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	condominiumID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.GenerateReceiptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := valueobject.NewBillingPeriod(req.Month, req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// An omitted due_date falls back to the last day of the billed month.
	var dueDate time.Time
	if req.DueDate != "" {
		dueDate, err = time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			h.BadRequest(c, "due_date must be in YYYY-MM-DD format")
			return
		}
	}

	result, err := h.receiptService.GenerateReceipts(c.Request.Context(), appbilling.GenerateReceiptsRequest{
		TenantID:      tenantID,
		CondominiumID: condominiumID,
		Period:        period,
		DueDate:       dueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Carry any existing credit into the freshly issued receipts. The batch is
	// already committed, so settlement failures only log.
	ctx := c.Request.Context()
	settled := make(map[uuid.UUID]struct{}, len(result.Receipts))
	for _, receipt := range result.Receipts {
		if _, done := settled[receipt.UserID]; done {
			continue
		}
		settled[receipt.UserID] = struct{}{}
		if _, err := h.settlementService.AutoSettleCredit(ctx, tenantID, receipt.UserID); err != nil {
			logger.L(ctx).Warn("credit settlement after receipt generation failed",
				zap.String("user_id", receipt.UserID.String()),
				zap.Error(err))
		}
	}

	h.Created(c, result)
}

// GetReceipt handles GET /receipts/:id
func (h *BillingHandler) GetReceipt(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	receiptID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), tenantID, receiptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// ListReceipts handles GET /receipts
func (h *BillingHandler) ListReceipts(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	req := dto.ListReceiptsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.ReceiptFilter{
		Filter:      toSharedFilter(req.ListRequest),
		VisibleOnly: req.VisibleOnly,
	}
	if req.CondominiumID != "" {
		id := uuid.MustParse(req.CondominiumID)
		filter.CondominiumID = &id
	}
	if req.PropertyID != "" {
		id := uuid.MustParse(req.PropertyID)
		filter.PropertyID = &id
	}
	if req.UserID != "" {
		id := uuid.MustParse(req.UserID)
		filter.UserID = &id
	}
	if req.Status != "" {
		status := billing.ReceiptStatus(req.Status)
		filter.Status = &status
	}
	if req.Month != 0 {
		filter.Month = &req.Month
	}
	if req.Year != 0 {
		filter.Year = &req.Year
	}

	page, err := h.receiptService.ListReceipts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AnnulReceipt handles POST /receipts/:id/annul
func (h *BillingHandler) AnnulReceipt(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	receiptID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.AnnulReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receipt, err := h.receiptService.AnnulReceipt(c.Request.Context(), tenantID, receiptID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// SetReceiptVisibility handles PATCH /receipts/:id/visibility
func (h *BillingHandler) SetReceiptVisibility(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	receiptID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.SetReceiptVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.receiptService.SetReceiptVisibility(c.Request.Context(), tenantID, receiptID, *req.Visible); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SweepOverdue handles POST /receipts/sweep-overdue
func (h *BillingHandler) SweepOverdue(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.SweepOverdueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	asOf := time.Now().UTC()
	if req.AsOf != "" {
		asOf, err = time.Parse("2006-01-02", req.AsOf)
		if err != nil {
			h.BadRequest(c, "as_of must be in YYYY-MM-DD format")
			return
		}
	}

	count, err := h.receiptService.SweepOverdue(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"marked_overdue": count})
}

// ReportPayment handles POST /receipts/:id/payments
func (h *BillingHandler) ReportPayment(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	userID, err := h.userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	receiptID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.ReportPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyVESFromString(req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payment, err := h.paymentService.ReportPayment(c.Request.Context(), appbilling.ReportPaymentRequest{
		TenantID:  tenantID,
		ReceiptID: receiptID,
		UserID:    userID,
		Amount:    amount,
		Method:    billing.PaymentMethod(req.Method),
		Reference: req.Reference,
		Remark:    req.Remark,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// GetPayment handles GET /payments/:id
func (h *BillingHandler) GetPayment(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paymentID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// ListPayments handles GET /payments
func (h *BillingHandler) ListPayments(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	req := dto.ListPaymentsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.PaymentFilter{Filter: toSharedFilter(req.ListRequest)}
	if req.ReceiptID != "" {
		id := uuid.MustParse(req.ReceiptID)
		filter.ReceiptID = &id
	}
	if req.UserID != "" {
		id := uuid.MustParse(req.UserID)
		filter.UserID = &id
	}
	if req.Status != "" {
		status := billing.PaymentStatus(req.Status)
		filter.Status = &status
	}
	if req.Method != "" {
		method := billing.PaymentMethod(req.Method)
		filter.Method = &method
	}

	page, err := h.paymentService.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ConfirmPayment handles POST /payments/:id/confirm
func (h *BillingHandler) ConfirmPayment(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paymentID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.paymentService.ConfirmPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RejectPayment handles POST /payments/:id/reject
func (h *BillingHandler) RejectPayment(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paymentID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.RejectPayment(c.Request.Context(), tenantID, paymentID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// SettleCredit handles POST /users/:id/credit/settle
func (h *BillingHandler) SettleCredit(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	userID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.settlementService.AutoSettleCredit(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetAccount handles GET /users/:id/account
func (h *BillingHandler) GetAccount(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	userID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	account, err := h.settlementService.GetAccount(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// BookExpense handles POST /expenses
func (h *BillingHandler) BookExpense(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.BookExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := valueobject.NewBillingPeriod(req.Month, req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	amount, err := valueobject.NewMoneyVESFromString(req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var invoiceID *uuid.UUID
	if req.InvoiceID != "" {
		id := uuid.MustParse(req.InvoiceID)
		invoiceID = &id
	}

	record, err := h.expenseService.BookExpense(c.Request.Context(), appbilling.BookExpenseRequest{
		TenantID:      tenantID,
		CondominiumID: uuid.MustParse(req.CondominiumID),
		Period:        period,
		Category:      billing.ExpenseCategory(req.Category),
		Description:   req.Description,
		Amount:        amount,
		InvoiceID:     invoiceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// ListExpenses handles GET /expenses
func (h *BillingHandler) ListExpenses(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := valueobject.NewBillingPeriod(req.Month, req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	records, err := h.expenseService.ListExpenses(c.Request.Context(), tenantID,
		uuid.MustParse(req.CondominiumID), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// RemoveExpense handles DELETE /expenses/:id
func (h *BillingHandler) RemoveExpense(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	expenseID, err := h.pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.expenseService.RemoveExpense(c.Request.Context(), tenantID, expenseID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// toSharedFilter converts list request parameters to a domain filter.
func toSharedFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	return filter
}
