package dto

// GenerateReceiptsRequest asks the engine to bill a condominium for a period.
type GenerateReceiptsRequest struct {
	Month   int    `json:"month" binding:"required,min=1,max=12"`
	Year    int    `json:"year" binding:"required,min=2000,max=2100"`
	DueDate string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

// ReportPaymentRequest reports a payment made against a receipt.
type ReportPaymentRequest struct {
	Amount    string `json:"amount" binding:"required,money"`
	Method    string `json:"method" binding:"required,oneof=TRANSFER CASH CARD MOBILE"`
	Reference string `json:"reference" binding:"required,max=64"`
	Remark    string `json:"remark" binding:"max=500"`
}

// RejectPaymentRequest denies a reported payment.
type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// AnnulReceiptRequest voids an unpaid receipt.
type AnnulReceiptRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// SetReceiptVisibilityRequest shows or hides a receipt from residents.
type SetReceiptVisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

// SweepOverdueRequest marks open receipts past their due date as overdue.
// AsOf defaults to now when omitted.
type SweepOverdueRequest struct {
	AsOf string `json:"as_of" binding:"omitempty,datetime=2006-01-02"`
}

// BookExpenseRequest records an expense line against a billing period.
type BookExpenseRequest struct {
	CondominiumID string `json:"condominium_id" binding:"required,uuid"`
	Month         int    `json:"month" binding:"required,min=1,max=12"`
	Year          int    `json:"year" binding:"required,min=2000,max=2100"`
	Category      string `json:"category" binding:"required,oneof=MAINTENANCE UTILITIES PERSONNEL INSURANCE RESERVE OTHER"`
	Description   string `json:"description" binding:"required,max=500"`
	Amount        string `json:"amount" binding:"required,money"`
	InvoiceID     string `json:"invoice_id" binding:"omitempty,uuid"`
}

// ListReceiptsRequest carries receipt listing filters.
type ListReceiptsRequest struct {
	ListRequest
	CondominiumID string `form:"condominium_id" binding:"omitempty,uuid"`
	PropertyID    string `form:"property_id" binding:"omitempty,uuid"`
	UserID        string `form:"user_id" binding:"omitempty,uuid"`
	Status        string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID OVERDUE ANULED"`
	Month         int    `form:"month" binding:"omitempty,min=1,max=12"`
	Year          int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	VisibleOnly   bool   `form:"visible_only"`
}

// ListPaymentsRequest carries payment listing filters.
type ListPaymentsRequest struct {
	ListRequest
	ReceiptID string `form:"receipt_id" binding:"omitempty,uuid"`
	UserID    string `form:"user_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Method    string `form:"method" binding:"omitempty,oneof=TRANSFER CASH CARD MOBILE CREDIT"`
}

// ListExpensesRequest carries expense listing filters.
type ListExpensesRequest struct {
	CondominiumID string `form:"condominium_id" binding:"required,uuid"`
	Month         int    `form:"month" binding:"required,min=1,max=12"`
	Year          int    `form:"year" binding:"required,min=2000,max=2100"`
}
