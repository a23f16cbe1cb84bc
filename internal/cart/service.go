package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madererasanjose/storefront-backend/internal/pricing"
	"github.com/madererasanjose/storefront-backend/pkg/config"
	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
	"github.com/madererasanjose/storefront-backend/pkg/types"
)

// attrFinish marks the planed-finish attribute that triggers the unit price
// surcharge.
const (
	attrFinish       = "acabado"
	attrFinishPlaned = "cepillado"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart lifecycle and line-item operations.
type Service interface {
	Create(ctx context.Context, input CreateCartInput) (*models.Cart, error)
	Get(ctx context.Context, id uuid.UUID, opts GetOptions) (*models.Cart, error)
	AddItem(ctx context.Context, cartID uuid.UUID, input ItemInput) (*models.Cart, error)
	UpdateItem(ctx context.Context, cartID, itemID uuid.UUID, patch ItemPatch) (*models.Cart, error)
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
	Close(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo         CartRepository
	products     productLoader
	tx           txRunner
	taxRate      float64
	shippingFlat float64
	rounding     enums.RoundingMode
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, products productLoader, tx txRunner, cfg config.PricingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	mode, err := enums.ParseRoundingMode(cfg.Rounding)
	if err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return &service{
		repo:         repo,
		products:     products,
		tx:           tx,
		taxRate:      cfg.TaxRate,
		shippingFlat: cfg.ShippingFlat,
		rounding:     mode,
	}, nil
}

// CreateCartInput captures the payload required to open a cart.
type CreateCartInput struct {
	UserID   *string
	Currency string
}

// GetOptions tune cart fetch behavior.
type GetOptions struct {
	UserID     string
	AutoCreate bool
}

// ItemInput is the payload for adding a line to a cart.
type ItemInput struct {
	ProductID  uuid.UUID
	Qty        float64
	Attributes types.Attributes
}

// ItemPatch is a partial update for one cart line. Nil fields are untouched.
type ItemPatch struct {
	Qty        *float64
	Attributes *types.Attributes
}

// Create opens a cart. When a user id is provided and that user already has an
// open cart, the existing cart is returned instead of opening a second one.
// The check is a plain lookup before insert, so concurrent creates for the
// same user can still race into two open carts; the next fetch merges them.
func (s *service) Create(ctx context.Context, input CreateCartInput) (*models.Cart, error) {
	currency := enums.CurrencyARS
	if input.Currency != "" {
		parsed, err := enums.ParseCurrency(input.Currency)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency").
				WithDetails(map[string]any{"moneda": input.Currency})
		}
		currency = parsed
	}
	if input.UserID != nil && *input.UserID != "" {
		open, err := s.repo.FindOpenByUser(ctx, *input.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup open carts")
		}
		if len(open) > 0 {
			return &open[0], nil
		}
	}
	record := &models.Cart{
		ID:       uuid.New(),
		UserID:   input.UserID,
		Currency: currency,
		Status:   enums.CartStatusOpen,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
	}
	return created, nil
}

// Get fetches a cart by id. With AutoCreate the missing cart is created under
// the requested id so the caller's reference stays valid. With a user id, any
// other open cart of that user is folded into the fetched one and closed.
func (s *service) Get(ctx context.Context, id uuid.UUID, opts GetOptions) (*models.Cart, error) {
	record, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !opts.AutoCreate {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		record = &models.Cart{ID: id, Currency: enums.CurrencyARS, Status: enums.CartStatusOpen}
		if opts.UserID != "" {
			userID := opts.UserID
			record.UserID = &userID
		}
		if record, err = s.repo.Create(ctx, record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "auto-create cart")
		}
		return record, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if opts.UserID != "" && record.IsOpen() {
		if record, err = s.absorbOpenCarts(ctx, record, opts.UserID); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// absorbOpenCarts merges the user's other open carts into the target and
// closes them.
func (s *service) absorbOpenCarts(ctx context.Context, target *models.Cart, userID string) (*models.Cart, error) {
	open, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup open carts")
	}
	merged := false
	for i := range open {
		other := &open[i]
		if other.ID == target.ID {
			continue
		}
		for _, item := range other.Items {
			foldItem(target, item)
		}
		merged = true
	}
	if !merged {
		return target, nil
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i := range open {
			if open[i].ID == target.ID {
				continue
			}
			if err := repo.UpdateStatus(ctx, open[i].ID, enums.CartStatusClosed); err != nil {
				return err
			}
		}
		return persist(ctx, repo, target, s.taxRate, s.shippingFlat, s.rounding)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge open carts")
	}
	return target, nil
}

// AddItem validates the payload, snapshots the product and folds the line into
// any existing line sharing the same merge identity.
func (s *service) AddItem(ctx context.Context, cartID uuid.UUID, input ItemInput) (*models.Cart, error) {
	record, err := s.loadOpen(ctx, cartID)
	if err != nil {
		return nil, err
	}

	var violations []string
	details := map[string]any{}
	if input.ProductID == uuid.Nil {
		violations = append(violations, "productoId is required")
		details["productoId"] = "required"
	}
	if err := pricing.ValidateQty(input.Qty); err != nil {
		violations = append(violations, "cantidad must be a positive finite number")
		details["cantidad"] = input.Qty
	}
	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, strings.Join(violations, "; ")).
			WithDetails(details)
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is inactive").
			WithDetails(map[string]any{"productoId": product.ID})
	}

	attrs := input.Attributes.Normalize()
	quote, err := pricing.QuoteProduct(product, pricing.QuoteInput{
		Qty:             input.Qty,
		FinishSurcharge: attrs[attrFinish] == attrFinishPlaned,
		Rounding:        s.rounding,
	})
	if err != nil {
		return nil, err
	}

	imageURL := ""
	if product.ImageURL != nil {
		imageURL = *product.ImageURL
	}
	foldItem(record, models.CartItem{
		ID:         uuid.New(),
		CartID:     record.ID,
		ProductID:  product.ID,
		Name:       product.Name,
		SKU:        product.SKU,
		ImageURL:   imageURL,
		Attributes: attrs,
		MergeKey:   mergeKey(product.ID, attrs),
		UnitPrice:  quote.UnitPrice,
		Qty:        input.Qty,
	})
	return s.save(ctx, record)
}

// UpdateItem patches one line. An attribute change that lands on another
// line's merge identity folds the two lines together.
func (s *service) UpdateItem(ctx context.Context, cartID, itemID uuid.UUID, patch ItemPatch) (*models.Cart, error) {
	record, err := s.loadOpen(ctx, cartID)
	if err != nil {
		return nil, err
	}
	idx := indexOfItem(record, itemID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if patch.Qty != nil {
		if err := pricing.ValidateQty(*patch.Qty); err != nil {
			return nil, err
		}
		record.Items[idx].Qty = *patch.Qty
	}
	if patch.Attributes != nil {
		attrs := patch.Attributes.Normalize()
		record.Items[idx].Attributes = attrs
		record.Items[idx].MergeKey = mergeKey(record.Items[idx].ProductID, attrs)
		item := record.Items[idx]
		record.Items = append(record.Items[:idx], record.Items[idx+1:]...)
		foldItem(record, item)
	}
	return s.save(ctx, record)
}

// RemoveItem deletes one line from the cart.
func (s *service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.Cart, error) {
	record, err := s.loadOpen(ctx, cartID)
	if err != nil {
		return nil, err
	}
	idx := indexOfItem(record, itemID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	record.Items = append(record.Items[:idx], record.Items[idx+1:]...)
	return s.save(ctx, record)
}

// Clear removes every line from the cart.
func (s *service) Clear(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	record, err := s.loadOpen(ctx, cartID)
	if err != nil {
		return nil, err
	}
	record.Items = nil
	return s.save(ctx, record)
}

// Close transitions the cart to closed. Closing an already-closed cart is a
// no-op.
func (s *service) Close(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	record, err := s.repo.FindByID(ctx, cartID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if !record.IsOpen() {
		return record, nil
	}
	now := time.Now().UTC()
	record.Status = enums.CartStatusClosed
	record.ClosedAt = &now
	if record, err = s.repo.Update(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close cart")
	}
	return record, nil
}

func (s *service) loadOpen(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	record, err := s.repo.FindByID(ctx, cartID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if !record.IsOpen() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is closed")
	}
	return record, nil
}

// save recomputes totals and writes the cart with its items in one
// transaction.
func (s *service) save(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return persist(ctx, s.repo.WithTx(tx), record, s.taxRate, s.shippingFlat, s.rounding)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	return record, nil
}

func persist(ctx context.Context, repo CartRepository, record *models.Cart, taxRate, shippingFlat float64, mode enums.RoundingMode) error {
	totals := pricing.CartTotals(record.Items, taxRate, shippingFlat, mode)
	record.Subtotal = totals.Subtotal
	record.Taxes = totals.Taxes
	record.Shipping = totals.Shipping
	record.Total = totals.Total
	if err := repo.ReplaceItems(ctx, record.ID, record.Items); err != nil {
		return err
	}
	_, err := repo.Update(ctx, record)
	return err
}

// foldItem appends the item, summing quantities into an existing line when the
// merge identity matches.
func foldItem(record *models.Cart, item models.CartItem) {
	for i := range record.Items {
		if record.Items[i].MergeKey == item.MergeKey {
			record.Items[i].Qty += item.Qty
			return
		}
	}
	item.CartID = record.ID
	record.Items = append(record.Items, item)
}

func indexOfItem(record *models.Cart, itemID uuid.UUID) int {
	for i := range record.Items {
		if record.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func mergeKey(productID uuid.UUID, attrs types.Attributes) string {
	return productID.String() + "|" + attrs.CanonicalKey()
}
