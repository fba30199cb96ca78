package model

import (
	"time"

	"github.com/google/uuid"
)

// Sale is an immutable, append-only ledger entry. Committing a sale decrements
// stock per item and credits CashAmount to the shop balance and OnlineAmount
// to the bank balance in one transaction. There is no update or delete path.
type Sale struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null;index"`
	Total        int64     `gorm:"not null"`
	CashAmount   int64     `gorm:"not null"`
	OnlineAmount int64     `gorm:"not null"`
	// SlipURL references the uploaded payment slip for online payments; opaque here.
	SlipURL   *string
	CreatedAt time.Time `gorm:"index"`

	Items   []SaleItem `gorm:"foreignKey:SaleID"`
	Creator *Profile   `gorm:"foreignKey:CreatedBy"`
}

// SaleItem carries a denormalized snapshot of the category at sale time
// (price and pre-sale stock), so deleting a category never orphans history.
type SaleItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID `gorm:"type:uuid;index;not null"`
	// CategoryID is kept for traceability but carries no FK constraint:
	// the category row may be deleted after the fact.
	CategoryID  uuid.UUID `gorm:"type:uuid;not null"`
	Price       int64     `gorm:"not null"`
	Quantity    int       `gorm:"not null;check:quantity > 0"`
	StockBefore int       `gorm:"not null"`
}

func (Sale) TableName() string     { return "sales" }
func (SaleItem) TableName() string { return "sale_items" }
