package shipments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
)

// Repository defines the persistence surface for shipments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ShipmentStatus, comment string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a shipments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	if shipment.Status == "" {
		shipment.Status = enums.ShipmentStatusPending
	}
	if err := r.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// UpdateStatus moves the shipment forward and appends to its history.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ShipmentStatus, comment string) error {
	shipment, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	shipment.Status = status
	shipment.History = shipment.History.Append(status.String(), time.Now().UTC(), comment)
	return r.db.WithContext(ctx).Save(shipment).Error
}
