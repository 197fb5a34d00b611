package dto

import "net/http"

// Error codes used across the API surface. Domain errors carry their own
// codes; the handlers translate them to HTTP statuses via GetHTTPStatus.
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeInternal     = "ERR_INTERNAL"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInternal:     http.StatusInternalServerError,

	// Lookup failures.
	"NOT_FOUND":         http.StatusNotFound,
	"RECEIPT_NOT_FOUND": http.StatusNotFound,
	"PAYMENT_NOT_FOUND": http.StatusNotFound,
	"INVOICE_NOT_FOUND": http.StatusNotFound,
	"EXPENSE_NOT_FOUND": http.StatusNotFound,
	"ACCOUNT_NOT_FOUND": http.StatusNotFound,

	// Uniqueness and concurrency conflicts.
	"DUPLICATE_PERIOD":         http.StatusConflict,
	"DUPLICATE_REFERENCE":      http.StatusConflict,
	"DUPLICATE_INVOICE_NUMBER": http.StatusConflict,
	"PERIOD_ALREADY_BILLED":    http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR":    http.StatusConflict,

	// Business rule violations on otherwise well-formed requests.
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"RECEIPT_ALREADY_SETTLED": http.StatusUnprocessableEntity,
	"HAS_PAYMENTS":            http.StatusUnprocessableEntity,
	"INSUFFICIENT_CREDIT":     http.StatusUnprocessableEntity,
	"EXCEEDS_OUTSTANDING":     http.StatusUnprocessableEntity,
	"INVALID_ALLOCATION":      http.StatusUnprocessableEntity,
	"NO_ELIGIBLE_PROPERTIES":  http.StatusUnprocessableEntity,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Malformed input.
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_TENANT":         http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_CURRENCY":       http.StatusBadRequest,
	"INVALID_PERIOD":         http.StatusBadRequest,
	"INVALID_ALIQUOT":        http.StatusBadRequest,
	"INVALID_METHOD":         http.StatusBadRequest,
	"INVALID_REFERENCE":      http.StatusBadRequest,
	"INVALID_REASON":         http.StatusBadRequest,
	"INVALID_CATEGORY":       http.StatusBadRequest,
	"INVALID_DESCRIPTION":    http.StatusBadRequest,
	"INVALID_CONDOMINIUM":    http.StatusBadRequest,
	"INVALID_PROPERTY":       http.StatusBadRequest,
	"INVALID_USER":           http.StatusBadRequest,
	"INVALID_SUPPLIER":       http.StatusBadRequest,
	"INVALID_SUPPLIER_NAME":  http.StatusBadRequest,
	"INVALID_RECEIPT":        http.StatusBadRequest,
	"INVALID_PAYMENT":        http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER": http.StatusBadRequest,
	"INVALID_DUE_DATE":       http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to
// 422 for unknown domain codes so new business rules do not surface as 500s.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
