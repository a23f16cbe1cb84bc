package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/pkg/types"
)

// OrderLineItem snapshots one cart line at checkout time.
type OrderLineItem struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Name       string           `gorm:"column:name;not null"`
	SKU        string           `gorm:"column:sku;not null"`
	Attributes types.Attributes `gorm:"column:attributes;type:jsonb;serializer:json"`
	UnitPrice  float64          `gorm:"column:unit_price;not null"`
	Qty        float64          `gorm:"column:qty;not null"`
	Total      float64          `gorm:"column:total;not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}
