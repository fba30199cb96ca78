package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles understood by the notification fan-out and the bank-figure gate.
// Any other value is rejected rather than defaulted — see worker.ErrUnknownRole.
const (
	RoleManager = "manager"
	RoleOwner   = "owner"
)

// Profile stores a phone/PIN authenticated user.
// Approved gates all mutation endpoints; IsAdmin gates approval management.
type Profile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Phone    string    `gorm:"uniqueIndex;not null"`
	Name     string    `gorm:"not null"`
	Role     string    `gorm:"type:varchar(20);not null"`
	PINHash  string    `gorm:"not null"`
	IsAdmin  bool      `gorm:"not null;default:false"`
	Approved bool      `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Profile) TableName() string { return "profiles" }
