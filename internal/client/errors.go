package client

import (
	"errors"
	"fmt"

	"github.com/mrinmay27/the149-store/internal/apierror"
)

// Sentinel errors the dispatcher and UI branch on. Every rejection from a
// mutation endpoint resolves to one of these; message text is never parsed.
var (
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInsufficientShopBalance = errors.New("insufficient shop balance")
	ErrInsufficientBankBalance = errors.New("insufficient bank balance")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrDuplicatePrice          = errors.New("duplicate price")
	ErrPaymentMismatch         = errors.New("payment amounts do not match total")
	ErrForbidden               = errors.New("forbidden")
	ErrNotFound                = errors.New("not found")
	ErrSessionExpired          = errors.New("session expired")
	ErrServer                  = errors.New("server error")
)

var codeToErr = map[string]error{
	apierror.CodeInsufficientStock:       ErrInsufficientStock,
	apierror.CodeInsufficientShopBalance: ErrInsufficientShopBalance,
	apierror.CodeInsufficientBankBalance: ErrInsufficientBankBalance,
	apierror.CodeCategoryNotFound:        ErrCategoryNotFound,
	apierror.CodeNotFound:                ErrNotFound,
	apierror.CodeDuplicatePrice:          ErrDuplicatePrice,
	apierror.CodePaymentMismatch:         ErrPaymentMismatch,
	apierror.CodeForbidden:               ErrForbidden,
	apierror.CodeUnapproved:              ErrForbidden,
	apierror.CodeUnauthorized:            ErrSessionExpired,
}

// apiError converts a decoded error envelope to its sentinel, keeping the
// server detail for display.
func apiError(code, detail string) error {
	if sentinel, ok := codeToErr[code]; ok {
		return fmt.Errorf("%w: %s", sentinel, detail)
	}
	return fmt.Errorf("%w: %s", ErrServer, detail)
}

// IsDomainRejection reports whether err is a definitive business-rule
// rejection. These roll back optimistic updates immediately; transport
// errors do not, since the mutation may still have landed.
func IsDomainRejection(err error) bool {
	for _, sentinel := range []error{
		ErrInsufficientStock, ErrInsufficientShopBalance, ErrInsufficientBankBalance,
		ErrCategoryNotFound, ErrDuplicatePrice, ErrPaymentMismatch,
		ErrForbidden, ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
