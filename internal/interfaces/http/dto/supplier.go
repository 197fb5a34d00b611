package dto

// RegisterInvoiceRequest mirrors a supplier invoice into the ledger.
type RegisterInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required,max=64"`
	CondominiumID string `json:"condominium_id" binding:"required,uuid"`
	SupplierID    string `json:"supplier_id" binding:"required,uuid"`
	SupplierName  string `json:"supplier_name" binding:"required,max=255"`
	Concept       string `json:"concept" binding:"required,max=500"`
	Amount        string `json:"amount" binding:"required,money"`
	IssueDate     string `json:"issue_date" binding:"required,datetime=2006-01-02"`
	DueDate       string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`

	// Optional expense booking in the same transaction.
	ExpenseMonth    int    `json:"expense_month" binding:"omitempty,min=1,max=12"`
	ExpenseYear     int    `json:"expense_year" binding:"omitempty,min=2000,max=2100"`
	ExpenseCategory string `json:"expense_category" binding:"omitempty,oneof=MAINTENANCE UTILITIES PERSONNEL INSURANCE RESERVE OTHER"`
}

// PayInvoiceRequest records a payment made to a supplier.
type PayInvoiceRequest struct {
	Amount    string `json:"amount" binding:"required,money"`
	Method    string `json:"method" binding:"required,max=32"`
	Reference string `json:"reference" binding:"max=64"`
	Remark    string `json:"remark" binding:"max=500"`
}

// CancelInvoiceRequest cancels an unpaid supplier invoice.
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ListInvoicesRequest carries supplier invoice listing filters.
type ListInvoicesRequest struct {
	ListRequest
	CondominiumID string `form:"condominium_id" binding:"omitempty,uuid"`
	SupplierID    string `form:"supplier_id" binding:"omitempty,uuid"`
	Status        string `form:"status" binding:"omitempty,oneof=PENDING PAID CANCELLED"`
	Overdue       *bool  `form:"overdue"`
}
