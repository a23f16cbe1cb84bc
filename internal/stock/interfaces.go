package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madererasanjose/storefront-backend/pkg/db/models"
)

// ReservationRepository defines the persistence surface required by the stock
// service.
type ReservationRepository interface {
	WithTx(tx *gorm.DB) ReservationRepository
	Create(ctx context.Context, record *models.StockReservation) (*models.StockReservation, error)
	Update(ctx context.Context, record *models.StockReservation) (*models.StockReservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StockReservation, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.StockReservation, error)
	SumActiveByProduct(ctx context.Context, productID uuid.UUID, now time.Time) (float64, error)
	ListActiveByCart(ctx context.Context, cartID uuid.UUID, now time.Time) ([]models.StockReservation, error)
}
