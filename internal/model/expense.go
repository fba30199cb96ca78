package model

import (
	"time"

	"github.com/google/uuid"
)

// Expense is an immutable outflow from one or both balances.
// Amount is always CashAmount + OnlineAmount, enforced at creation.
type Expense struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null;index"`
	Purpose      string    `gorm:"not null"`
	Amount       int64     `gorm:"not null"`
	CashAmount   int64     `gorm:"not null;check:cash_amount >= 0"`
	OnlineAmount int64     `gorm:"not null;check:online_amount >= 0"`
	ReceiptURL   *string
	CreatedAt    time.Time `gorm:"index"`

	Creator *Profile `gorm:"foreignKey:CreatedBy"`
}

func (Expense) TableName() string { return "expenses" }
