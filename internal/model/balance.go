package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountBalance is the singleton ledger record holding both running balances.
// Amounts are integer minor currency units. Exactly one row exists; every
// mutation goes through LedgerRepository.Mutate which locks it FOR UPDATE —
// no other write path is allowed.
type AccountBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopBalance int64     `gorm:"not null;default:0;check:shop_balance >= 0"`
	BankBalance int64     `gorm:"not null;default:0;check:bank_balance >= 0"`
	UpdatedAt   time.Time
}

func (AccountBalance) TableName() string { return "account_balances" }
