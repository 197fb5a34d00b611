package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// The request validation paths below never reach the application services,
// so the handler is wired with nil services on purpose.
func newValidationTestHandler() *BillingHandler {
	return NewBillingHandler(nil, nil, nil, nil)
}

func newAuthedRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Tenant-ID", uuid.NewString())
	req.Header.Set("X-User-ID", uuid.NewString())
	return req
}

func TestGenerateReceiptsRejectsMissingTenant(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.POST("/condominiums/:id/receipts/generate", h.GenerateReceipts)

	req := httptest.NewRequest(http.MethodPost,
		"/condominiums/"+uuid.NewString()+"/receipts/generate",
		strings.NewReader(`{"month":3,"year":2026}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateReceiptsRejectsBadCondominiumID(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.POST("/condominiums/:id/receipts/generate", h.GenerateReceipts)

	req := newAuthedRequest(http.MethodPost,
		"/condominiums/not-a-uuid/receipts/generate", `{"month":3,"year":2026}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateReceiptsRejectsBadMonth(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.POST("/condominiums/:id/receipts/generate", h.GenerateReceipts)

	req := newAuthedRequest(http.MethodPost,
		"/condominiums/"+uuid.NewString()+"/receipts/generate", `{"month":13,"year":2026}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
}

func TestReportPaymentRejectsUnknownMethod(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.POST("/receipts/:id/payments", h.ReportPayment)

	req := newAuthedRequest(http.MethodPost,
		"/receipts/"+uuid.NewString()+"/payments",
		`{"amount":"100.00","method":"BARTER","reference":"REF-1"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportPaymentRejectsMissingReference(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.POST("/receipts/:id/payments", h.ReportPayment)

	req := newAuthedRequest(http.MethodPost,
		"/receipts/"+uuid.NewString()+"/payments",
		`{"amount":"100.00","method":"TRANSFER"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRejectPaymentRequiresReason(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.POST("/payments/:id/reject", h.RejectPayment)

	req := newAuthedRequest(http.MethodPost,
		"/payments/"+uuid.NewString()+"/reject", `{}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetReceiptVisibilityRequiresFlag(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.PATCH("/receipts/:id/visibility", h.SetReceiptVisibility)

	req := newAuthedRequest(http.MethodPatch,
		"/receipts/"+uuid.NewString()+"/visibility", `{}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookExpenseRejectsUnknownCategory(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.POST("/expenses", h.BookExpense)

	req := newAuthedRequest(http.MethodPost, "/expenses",
		`{"condominium_id":"`+uuid.NewString()+`","month":3,"year":2026,"category":"FUN","description":"party","amount":"50"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListExpensesRequiresCondominium(t *testing.T) {
	h := newValidationTestHandler()
	router := gin.New()
	router.GET("/expenses", h.ListExpenses)

	req := newAuthedRequest(http.MethodGet, "/expenses?month=3&year=2026", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
