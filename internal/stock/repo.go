package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservation repository bound to the provided DB.
func NewRepository(db *gorm.DB) ReservationRepository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) ReservationRepository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.StockReservation) (*models.StockReservation, error) {
	if record.Status == "" {
		record.Status = enums.ReservationStatusActive
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) Update(ctx context.Context, record *models.StockReservation) (*models.StockReservation, error) {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StockReservation, error) {
	var record models.StockReservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, key string) (*models.StockReservation, error) {
	var record models.StockReservation
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SumActiveByProduct totals the quantities of unexpired active holds. Expired
// rows are excluded here instead of being flipped, which is what makes expiry
// lazy.
func (r *repository) SumActiveByProduct(ctx context.Context, productID uuid.UUID, now time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.StockReservation{}).
		Select("COALESCE(SUM(qty), 0)").
		Where("product_id = ? AND status = ? AND expires_at > ?", productID, enums.ReservationStatusActive, now).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) ListActiveByCart(ctx context.Context, cartID uuid.UUID, now time.Time) ([]models.StockReservation, error) {
	var rows []models.StockReservation
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND status = ? AND expires_at > ?", cartID, enums.ReservationStatusActive, now).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
