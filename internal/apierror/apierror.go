// Package apierror provides the standardized error envelope for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
//
// Code is machine-readable: the client dispatcher branches on it to decide
// rollback vs. retry vs. sign-out, never on the human-readable Detail text.
package apierror

// Stable error codes shared with the client.
const (
	CodeInsufficientStock       = "insufficient_stock"
	CodeInsufficientShopBalance = "insufficient_shop_balance"
	CodeInsufficientBankBalance = "insufficient_bank_balance"
	CodeCategoryNotFound        = "category_not_found"
	CodeNotFound                = "not_found"
	CodeDuplicatePrice          = "duplicate_price"
	CodePaymentMismatch         = "payment_mismatch"
	CodeUnauthorized            = "unauthorized"
	CodeForbidden               = "forbidden"
	CodeUnapproved              = "unapproved"
	CodeValidation              = "validation"
	CodeInternal                = "internal"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func New(code, msg string) *APIError {
	return &APIError{Code: code, Detail: msg}
}

// Internal builds a generic 5xx envelope that exposes nothing internal.
func Internal() *APIError {
	return &APIError{Code: CodeInternal, Detail: "internal server error"}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Detail: "validation failed", Fields: fields}
}
