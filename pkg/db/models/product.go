package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/pkg/enums"
)

// Product is the canonical catalog listing. On-hand stock lives here and is
// only ever decremented by completed checkouts; holds never touch it.
type Product struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                string            `gorm:"column:name;not null"`
	SKU                 string            `gorm:"column:sku;not null"`
	ImageURL            *string           `gorm:"column:image_url"`
	Unit                enums.ProductUnit `gorm:"column:unit;not null;default:'unidad'"`
	UnitPrice           float64           `gorm:"column:unit_price;not null"`
	StockQty            float64           `gorm:"column:stock_qty;not null;default:0"`
	FinishSurchargeRate float64           `gorm:"column:finish_surcharge_rate;not null;default:0"`
	IsActive            bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
