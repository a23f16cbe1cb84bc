package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/pkg/enums"
)

// StockMovement is an append-only ledger row written whenever on-hand stock
// changes. Qty is the signed delta applied to the product.
type StockMovement struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	OrderID   *uuid.UUID              `gorm:"column:order_id;type:uuid"`
	Qty       float64                 `gorm:"column:qty;not null"`
	Type      enums.StockMovementType `gorm:"column:type;not null"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}
