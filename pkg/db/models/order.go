package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/pkg/enums"
)

// Order is the immutable record of a completed checkout. Only Status moves
// after creation, driven by external payment webhooks.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID            `gorm:"column:cart_id;type:uuid;not null;index"`
	CustomerID     *string              `gorm:"column:customer_id;index"`
	Status         enums.OrderStatus    `gorm:"column:status;not null;default:'pendiente'"`
	Currency       enums.Currency       `gorm:"column:currency;not null;default:'ARS'"`
	DeliveryMethod enums.DeliveryMethod `gorm:"column:delivery_method;not null;default:'retiro'"`
	PaymentRef     *string              `gorm:"column:payment_ref"`
	Subtotal       float64              `gorm:"column:subtotal;not null"`
	Taxes          float64              `gorm:"column:taxes;not null;default:0"`
	Shipping       float64              `gorm:"column:shipping;not null;default:0"`
	Total          float64              `gorm:"column:total;not null"`
	Items          []OrderLineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
