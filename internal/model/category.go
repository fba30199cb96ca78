package model

import (
	"time"

	"github.com/google/uuid"
)

// PriceCategory is a price tier of goods: everything selling at the same unit
// price shares one stock counter. Price is the natural key — duplicates are
// rejected at creation and on price adjustment.
type PriceCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Price     int64     `gorm:"uniqueIndex;not null;check:price > 0"`
	Stock     int       `gorm:"not null;default:0;check:stock >= 0"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PriceCategory) TableName() string { return "price_categories" }
