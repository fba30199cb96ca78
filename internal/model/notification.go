package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification types match the mutation that produced them.
const (
	NotifSale     = "sale"
	NotifExpense  = "expense"
	NotifDeposit  = "deposit"
	NotifApproval = "approval"
)

// Notification is a per-recipient event record written asynchronously by the
// notification worker. It is an output contract only — nothing in the ledger
// path reads it back.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Type        string         `gorm:"type:varchar(20);not null"`
	IsRead      bool           `gorm:"not null;default:false"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }
