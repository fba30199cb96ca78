package model

import (
	"time"

	"github.com/google/uuid"
)

// Deposit models cash physically moved from the till to the bank: the shop
// balance drops and the bank balance rises by the same amount, so the combined
// total is conserved. Immutable once created.
type Deposit struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DepositedBy uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceivedBy  uuid.UUID `gorm:"type:uuid;not null"`
	Amount      int64     `gorm:"not null;check:amount > 0"`
	Description string
	SlipURL     *string
	CreatedAt   time.Time `gorm:"index"`

	Depositor *Profile `gorm:"foreignKey:DepositedBy"`
	Receiver  *Profile `gorm:"foreignKey:ReceivedBy"`
}

func (Deposit) TableName() string { return "deposits" }
