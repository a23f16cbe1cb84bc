package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/pkg/enums"
)

// Cart holds pre-checkout line items for at most one user. Totals are always
// recomputed from the items; they are persisted for reads, never trusted as
// independently mutable state.
type Cart struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *string          `gorm:"column:user_id;index"`
	Currency  enums.Currency   `gorm:"column:currency;not null;default:'ARS'"`
	Status    enums.CartStatus `gorm:"column:status;not null;default:'open'"`
	Subtotal  float64          `gorm:"column:subtotal;not null;default:0"`
	Taxes     float64          `gorm:"column:taxes;not null;default:0"`
	Shipping  float64          `gorm:"column:shipping;not null;default:0"`
	Total     float64          `gorm:"column:total;not null;default:0"`
	ClosedAt  *time.Time       `gorm:"column:closed_at"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOpen reports whether the cart still accepts mutations.
func (c *Cart) IsOpen() bool {
	return c != nil && c.Status == enums.CartStatusOpen
}
