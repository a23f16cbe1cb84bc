package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madererasanjose/storefront-backend/internal/pricing"
	"github.com/madererasanjose/storefront-backend/pkg/config"
	pkgdb "github.com/madererasanjose/storefront-backend/pkg/db"
	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the stock hold ledger: reservations, releases and the
// availability view derived from them.
type Service interface {
	Reserve(ctx context.Context, input ReserveInput) (*models.StockReservation, error)
	Release(ctx context.Context, id uuid.UUID) (*models.StockReservation, error)
	Availability(ctx context.Context, productIDs []uuid.UUID) ([]Availability, error)
	ReleaseByCart(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

// ReserveInput captures one hold request.
type ReserveInput struct {
	ProductID      uuid.UUID
	CartID         *uuid.UUID
	Qty            float64
	TTLSeconds     *int64
	IdempotencyKey *string
}

// Availability is the per-product snapshot exposed over the API. Disponible is
// always stock minus active unexpired holds, never a stored column.
type Availability struct {
	ProductID  uuid.UUID `json:"productoId"`
	StockTotal float64   `json:"stockTotal"`
	Reserved   float64   `json:"reservado"`
	Available  float64   `json:"disponible"`
}

type service struct {
	repo       ReservationRepository
	products   productLoader
	defaultTTL time.Duration
	minTTL     time.Duration
	now        func() time.Time
}

// NewService builds the stock service backed by the provided stack.
func NewService(repo ReservationRepository, products productLoader, cfg config.ReservationConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if cfg.DefaultTTL <= 0 {
		return nil, fmt.Errorf("default reservation ttl must be positive")
	}
	if cfg.MinTTL <= 0 {
		return nil, fmt.Errorf("min reservation ttl must be positive")
	}
	return &service{
		repo:       repo,
		products:   products,
		defaultTTL: cfg.DefaultTTL,
		minTTL:     cfg.MinTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Reserve places a hold on a product. A request carrying an already-seen
// idempotency key returns the reservation created for that key, even when it
// has since expired or been released. The key lookup is a read before the
// insert, so two concurrent requests with the same fresh key can both pass the
// check and create two holds.
func (s *service) Reserve(ctx context.Context, input ReserveInput) (*models.StockReservation, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productoId is required")
	}
	if err := pricing.ValidateQty(input.Qty); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != nil && *input.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, *input.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "idempotency lookup")
		}
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	now := s.now()
	reserved, err := s.repo.SumActiveByProduct(ctx, product.ID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum active holds")
	}
	available := availableQty(product.StockQty, reserved)
	if input.Qty > available {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"stockTotal": product.StockQty,
				"reservado":  reserved,
				"disponible": available,
			})
	}

	record := &models.StockReservation{
		ID:             uuid.New(),
		ProductID:      product.ID,
		CartID:         input.CartID,
		Qty:            input.Qty,
		Status:         enums.ReservationStatusActive,
		ExpiresAt:      now.Add(s.ttlFor(input.TTLSeconds)),
		IdempotencyKey: input.IdempotencyKey,
	}
	created, err := s.repo.Create(ctx, record)
	if pkgdb.IsUniqueViolation(err, "") {
		// A concurrent request with the same key won the insert.
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "idempotency key already used")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reservation")
	}
	return created, nil
}

// ttlFor clamps the requested TTL to the configured floor and falls back to
// the default when none is requested.
func (s *service) ttlFor(requested *int64) time.Duration {
	if requested == nil || *requested <= 0 {
		return s.defaultTTL
	}
	ttl := time.Duration(*requested) * time.Second
	if ttl < s.minTTL {
		return s.minTTL
	}
	return ttl
}

// Release frees a hold. Releasing an already-released, expired, or unknown
// hold is a no-op, not an error. A nil record means there was nothing to
// release.
func (s *service) Release(ctx context.Context, id uuid.UUID) (*models.StockReservation, error) {
	record, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// A hold that no longer exists counts as already released.
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reservation")
	}
	if record.Status == enums.ReservationStatusReleased {
		return record, nil
	}
	record.Status = enums.ReservationStatusReleased
	if record, err = s.repo.Update(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release reservation")
	}
	return record, nil
}

// Availability computes the snapshot for each requested product.
func (s *service) Availability(ctx context.Context, productIDs []uuid.UUID) ([]Availability, error) {
	now := s.now()
	out := make([]Availability, 0, len(productIDs))
	for _, id := range productIDs {
		product, err := s.products.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productoId": id})
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		reserved, err := s.repo.SumActiveByProduct(ctx, id, now)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum active holds")
		}
		out = append(out, Availability{
			ProductID:  id,
			StockTotal: product.StockQty,
			Reserved:   reserved,
			Available:  availableQty(product.StockQty, reserved),
		})
	}
	return out, nil
}

// ReleaseByCart frees every active hold tied to the cart, inside the caller's
// transaction when one is provided.
func (s *service) ReleaseByCart(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	holds, err := repo.ListActiveByCart(ctx, cartID, s.now())
	if err != nil {
		return err
	}
	for i := range holds {
		holds[i].Status = enums.ReservationStatusReleased
		if _, err := repo.Update(ctx, &holds[i]); err != nil {
			return err
		}
	}
	return nil
}

// availableQty is on-hand stock minus active unexpired holds, floored at zero
// so oversold products never report negative availability.
func availableQty(stock, reserved float64) float64 {
	if available := stock - reserved; available > 0 {
		return available
	}
	return 0
}
