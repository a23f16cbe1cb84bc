package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/pkg/enums"
	"github.com/madererasanjose/storefront-backend/pkg/types"
)

// ShipmentItem is the denormalized line copy carried on a shipment so the
// logistics view never needs to join back to the order.
type ShipmentItem struct {
	ProductID uuid.UUID `json:"productoId"`
	Name      string    `json:"nombre"`
	SKU       string    `json:"sku"`
	Qty       float64   `json:"cantidad"`
}

// Shipment is created only for orders whose delivery method requires one.
// History is append-only.
type Shipment struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.ShipmentStatus  `gorm:"column:status;not null;default:'pendiente'"`
	Address   *types.Address        `gorm:"column:address;type:jsonb;serializer:json"`
	Items     []ShipmentItem        `gorm:"column:items;type:jsonb;serializer:json"`
	History   types.ShipmentHistory `gorm:"column:history;type:jsonb;serializer:json"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
