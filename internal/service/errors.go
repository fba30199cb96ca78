package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel validation errors. Every failed mutation returns one of these (or a
// struct error below) before any write happens, so callers can branch with
// errors.Is / errors.As instead of matching message text.
var (
	ErrCategoryNotFound = errors.New("price category not found")
	ErrDuplicatePrice   = errors.New("a category with this price already exists")
	ErrPaymentMismatch  = errors.New("cash + online does not equal the sale total")

	ErrOwnerRequired = errors.New("only owners may spend from the bank balance")

	ErrInvalidCredentials = errors.New("invalid phone or PIN")
	ErrNotApproved        = errors.New("profile is not approved")
	ErrNotFound           = errors.New("record not found")
)

// InsufficientStockError names the offending category so the client can show
// an actionable message. Raised before any stock decrement is applied.
type InsufficientStockError struct {
	CategoryID uuid.UUID
	Price      int64
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for price tier %d: requested %d, available %d",
		e.Price, e.Requested, e.Available)
}

// InsufficientBalanceError covers both balances; Account is "shop" or "bank".
type InsufficientBalanceError struct {
	Account   string
	Requested int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s amount %d exceeds available %s balance %d",
		e.Account, e.Requested, e.Account, e.Available)
}

func insufficientShop(requested, available int64) error {
	return &InsufficientBalanceError{Account: "shop", Requested: requested, Available: available}
}

func insufficientBank(requested, available int64) error {
	return &InsufficientBalanceError{Account: "bank", Requested: requested, Available: available}
}
