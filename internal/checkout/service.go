package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/madererasanjose/storefront-backend/internal/cart"
	"github.com/madererasanjose/storefront-backend/internal/orders"
	"github.com/madererasanjose/storefront-backend/internal/pricing"
	"github.com/madererasanjose/storefront-backend/internal/products"
	"github.com/madererasanjose/storefront-backend/internal/shipments"
	"github.com/madererasanjose/storefront-backend/pkg/config"
	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
	"github.com/madererasanjose/storefront-backend/pkg/types"
)

// Step names surfaced in partial-completion error details.
const (
	stepDecrementStock = "descontar_stock"
	stepReleaseHolds   = "liberar_reservas"
	stepCloseCart      = "cerrar_carrito"
	stepCreateShipment = "crear_envio"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type holdReleaser interface {
	ReleaseByCart(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

// Service orchestrates the checkout sequence.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*Result, error)
}

// CheckoutInput is the payload accepted by the checkout endpoint.
type CheckoutInput struct {
	CartID         uuid.UUID
	CustomerID     *string
	DeliveryMethod string
	Address        *types.Address
	PaymentRef     *string
}

// Result carries everything the sequence managed to produce. Order is always
// set on success, Shipment only for delivery methods that require one.
type Result struct {
	Order    *models.Order
	Shipment *models.Shipment
}

type service struct {
	carts        cart.Service
	products     products.Repository
	orders       orders.Repository
	shipments    shipments.Repository
	holds        holdReleaser
	tx           txRunner
	taxRate      float64
	shippingFlat float64
	rounding     enums.RoundingMode
}

// NewService builds the checkout orchestrator.
func NewService(carts cart.Service, products products.Repository, orders orders.Repository, shipments shipments.Repository, holds holdReleaser, tx txRunner, cfg config.PricingConfig) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if products == nil {
		return nil, fmt.Errorf("product store required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if shipments == nil {
		return nil, fmt.Errorf("shipment store required")
	}
	if holds == nil {
		return nil, fmt.Errorf("hold releaser required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	mode, err := enums.ParseRoundingMode(cfg.Rounding)
	if err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return &service{
		carts:        carts,
		products:     products,
		orders:       orders,
		shipments:    shipments,
		holds:        holds,
		tx:           tx,
		taxRate:      cfg.TaxRate,
		shippingFlat: cfg.ShippingFlat,
		rounding:     mode,
	}, nil
}

// Checkout runs the ordered sequence: create the order with repriced lines,
// then decrement stock, release the cart's holds, close the cart and create
// the shipment. Only the order creation is transactional; later step failures
// are collected and surfaced, never rolled back, so callers must treat the
// order id in the error details as real.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Result, error) {
	record, err := s.carts.Get(ctx, input.CartID, cart.GetOptions{})
	if err != nil {
		return nil, err
	}
	if !record.IsOpen() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is closed")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	method, err := enums.ParseDeliveryMethod(input.DeliveryMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method").
			WithDetails(map[string]any{"metodoEntrega": input.DeliveryMethod})
	}
	if method.RequiresShipment() && input.Address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required").
			WithDetails(map[string]any{"direccion": "required"})
	}

	lines, totals, err := s.reprice(ctx, record)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:             uuid.New(),
		CartID:         record.ID,
		CustomerID:     input.CustomerID,
		Status:         enums.OrderStatusPending,
		Currency:       record.Currency,
		DeliveryMethod: method,
		PaymentRef:     input.PaymentRef,
		Subtotal:       totals.Subtotal,
		Taxes:          totals.Taxes,
		Shipping:       totals.Shipping,
		Total:          totals.Total,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		if _, err := repo.Create(ctx, order); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		return repo.CreateLineItems(ctx, lines)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	order.Items = lines

	result := &Result{Order: order}
	var merr error
	var failed []string

	if err := s.decrementStock(ctx, order); err != nil {
		merr = multierr.Append(merr, err)
		failed = append(failed, stepDecrementStock)
	}
	if err := s.holds.ReleaseByCart(ctx, nil, record.ID); err != nil {
		merr = multierr.Append(merr, err)
		failed = append(failed, stepReleaseHolds)
	}
	if _, err := s.carts.Close(ctx, record.ID); err != nil {
		merr = multierr.Append(merr, err)
		failed = append(failed, stepCloseCart)
	}
	if method.RequiresShipment() {
		shipment, err := s.createShipment(ctx, order, input.Address)
		if err != nil {
			merr = multierr.Append(merr, err)
			failed = append(failed, stepCreateShipment)
		} else {
			result.Shipment = shipment
		}
	}

	if merr != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeInternal, merr, "checkout completed partially").
			WithDetails(map[string]any{
				"ordenId": order.ID,
				"step":    failed,
			})
	}
	return result, nil
}

// reprice rebuilds the order lines against current catalog prices. The cart's
// stored snapshots are ignored here so a stale cart cannot buy at an old
// price.
func (s *service) reprice(ctx context.Context, record *models.Cart) ([]models.OrderLineItem, pricing.Totals, error) {
	ids := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pricing.Totals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]models.OrderLineItem, 0, len(record.Items))
	priced := make([]models.CartItem, 0, len(record.Items))
	for _, item := range record.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, pricing.Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "product no longer available").
				WithDetails(map[string]any{"productoId": item.ProductID})
		}
		quote, err := pricing.QuoteProduct(product, pricing.QuoteInput{
			Qty:             item.Qty,
			FinishSurcharge: item.Attributes["acabado"] == "cepillado",
			Rounding:        s.rounding,
		})
		if err != nil {
			return nil, pricing.Totals{}, err
		}
		lines = append(lines, models.OrderLineItem{
			ID:         uuid.New(),
			ProductID:  item.ProductID,
			Name:       product.Name,
			SKU:        product.SKU,
			Attributes: item.Attributes,
			UnitPrice:  quote.UnitPrice,
			Qty:        item.Qty,
			Total:      quote.TotalFinal,
		})
		repricedItem := item
		repricedItem.UnitPrice = quote.UnitPrice
		priced = append(priced, repricedItem)
	}
	return lines, pricing.CartTotals(priced, s.taxRate, s.shippingFlat, s.rounding), nil
}

// decrementStock applies the sale delta per line and writes the matching
// ledger rows. Stock may go negative; the ledger keeps the trail.
func (s *service) decrementStock(ctx context.Context, order *models.Order) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		movements := make([]models.StockMovement, 0, len(order.Items))
		for _, line := range order.Items {
			if err := products.AdjustStock(ctx, line.ProductID, -line.Qty); err != nil {
				return err
			}
			orderID := order.ID
			movements = append(movements, models.StockMovement{
				ID:        uuid.New(),
				ProductID: line.ProductID,
				OrderID:   &orderID,
				Qty:       -line.Qty,
				Type:      enums.StockMovementSale,
			})
		}
		return s.orders.WithTx(tx).CreateMovements(ctx, movements)
	})
}

func (s *service) createShipment(ctx context.Context, order *models.Order, address *types.Address) (*models.Shipment, error) {
	items := make([]models.ShipmentItem, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, models.ShipmentItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			SKU:       line.SKU,
			Qty:       line.Qty,
		})
	}
	status := enums.ShipmentStatusPending
	shipment := &models.Shipment{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  status,
		Address: address,
		Items:   items,
		History: types.ShipmentHistory{}.Append(status.String(), time.Now().UTC(), "envío creado"),
	}
	return s.shipments.Create(ctx, shipment)
}
