package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/pkg/types"
)

// CartItem is one priced line in a cart. Name/SKU/image are snapshotted at
// add time so the cart survives catalog edits. MergeKey is the canonical
// (product, attributes) identity used to fold duplicate additions together.
type CartItem struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID     uuid.UUID        `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Name       string           `gorm:"column:name;not null"`
	SKU        string           `gorm:"column:sku;not null"`
	ImageURL   string           `gorm:"column:image_url;not null"`
	Attributes types.Attributes `gorm:"column:attributes;type:jsonb;serializer:json"`
	MergeKey   string           `gorm:"column:merge_key;not null;index"`
	UnitPrice  float64          `gorm:"column:unit_price;not null"`
	Qty        float64          `gorm:"column:qty;not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
