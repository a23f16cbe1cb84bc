package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/pkg/enums"
)

// StockReservation is a time-bounded hold against a product's availability.
// Expired holds are never transitioned on disk; readers exclude them by
// comparing ExpiresAt against the clock.
type StockReservation struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	CartID         *uuid.UUID              `gorm:"column:cart_id;type:uuid"`
	Qty            float64                 `gorm:"column:qty;not null"`
	Status         enums.ReservationStatus `gorm:"column:status;not null;default:'activa'"`
	ExpiresAt      time.Time               `gorm:"column:expires_at;not null"`
	IdempotencyKey *string                 `gorm:"column:idempotency_key;uniqueIndex"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// ExpiredAt reports whether the hold no longer counts against availability at
// the given instant, regardless of its stored status.
func (r *StockReservation) ExpiredAt(now time.Time) bool {
	return r != nil && !r.ExpiresAt.After(now)
}
