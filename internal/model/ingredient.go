package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpiryStatus classifies an ingredient by how close it is to its expiry date.
type ExpiryStatus string

const (
	ExpiryFresh        ExpiryStatus = "fresh"
	ExpiryExpiringSoon ExpiryStatus = "expiring_soon"
	ExpiryExpired      ExpiryStatus = "expired"
)

// Ingredient is a fridge item owned by a single user. All queries against
// this table are scoped to the owner's user id.
type Ingredient struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Quantity     string         `gorm:"size:50" json:"quantity"`
	Category     string         `gorm:"size:50" json:"category"`
	PurchaseDate time.Time      `json:"purchase_date"`
	ExpiryDate   time.Time      `gorm:"index" json:"expiry_date"`
	ImageURL     string         `gorm:"size:255" json:"image_url"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`

	// Status is computed from ExpiryDate when rows are returned to clients.
	Status ExpiryStatus `gorm:"-" json:"status,omitempty"`
}

// StatusAt returns the expiry bucket for the ingredient relative to now:
// expired (past expiry), expiring_soon (within 2 days) or fresh.
func (i *Ingredient) StatusAt(now time.Time) ExpiryStatus {
	days := int(math.Ceil(i.ExpiryDate.Sub(now).Hours() / 24))
	if days < 0 {
		return ExpiryExpired
	}
	if days <= 2 {
		return ExpiryExpiringSoon
	}
	return ExpiryFresh
}
