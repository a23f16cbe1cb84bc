package cart

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madererasanjose/storefront-backend/pkg/config"
	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
	"github.com/madererasanjose/storefront-backend/pkg/types"
)

type stubCartRepo struct {
	mu    sync.Mutex
	carts []*models.Cart
}

func (r *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return r }

func (r *stubCartRepo) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *record
	r.carts = append(r.carts, &stored)
	return record, nil
}

func (r *stubCartRepo) Update(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.carts {
		if r.carts[i].ID == record.ID {
			stored := *record
			r.carts[i] = &stored
			return record, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.carts {
		if stored.ID == id {
			loaded := *stored
			loaded.Items = append([]models.CartItem(nil), stored.Items...)
			return &loaded, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCartRepo) FindOpenByUser(ctx context.Context, userID string) ([]models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Cart
	for _, stored := range r.carts {
		if stored.UserID != nil && *stored.UserID == userID && stored.Status == enums.CartStatusOpen {
			loaded := *stored
			loaded.Items = append([]models.CartItem(nil), stored.Items...)
			out = append(out, loaded)
		}
	}
	return out, nil
}

func (r *stubCartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.carts {
		if stored.ID == cartID {
			stored.Items = append([]models.CartItem(nil), items...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubCartRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.carts {
		if stored.ID == id {
			stored.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (l *stubProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := l.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testProduct(price, surchargeRate float64) *models.Product {
	return &models.Product{
		ID:                  uuid.New(),
		Name:                "Tabla pino 2x4",
		SKU:                 "PINO-2X4",
		Unit:                enums.ProductUnitUnit,
		UnitPrice:           price,
		StockQty:            100,
		FinishSurchargeRate: surchargeRate,
		IsActive:            true,
	}
}

func newTestService(t *testing.T, repo *stubCartRepo, loader *stubProductLoader) Service {
	t.Helper()
	svc, err := NewService(repo, loader, stubTxRunner{}, config.PricingConfig{
		TaxRate:      0.21,
		ShippingFlat: 250,
		Rounding:     "total",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceCreateReturnsExistingOpenCart(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, &stubProductLoader{})
	user := "user-1"

	first, err := svc.Create(context.Background(), CreateCartInput{UserID: &user})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(context.Background(), CreateCartInput{UserID: &user})
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the existing open cart, got %s and %s", first.ID, second.ID)
	}
}

func TestServiceCreateRejectsUnknownCurrency(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, &stubProductLoader{})

	_, err := svc.Create(context.Background(), CreateCartInput{Currency: "EUR"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceGetAutoCreates(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, &stubProductLoader{})
	id := uuid.New()

	_, err := svc.Get(context.Background(), id, GetOptions{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	record, err := svc.Get(context.Background(), id, GetOptions{AutoCreate: true, UserID: "user-9"})
	if err != nil {
		t.Fatalf("auto-create: %v", err)
	}
	if record.ID != id {
		t.Fatalf("expected cart under requested id %s, got %s", id, record.ID)
	}
	if record.UserID == nil || *record.UserID != "user-9" {
		t.Fatalf("expected owner to be set, got %+v", record.UserID)
	}
}

func TestServiceGetMergesUserOpenCarts(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	product := testProduct(100, 0)
	loader.products[product.ID] = product
	svc := newTestService(t, repo, loader)
	user := "user-2"

	first, err := svc.Create(context.Background(), CreateCartInput{UserID: &user})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	// A second open cart for the same user, as left behind by the create race.
	userCopy := user
	stray, err := repo.Create(context.Background(), &models.Cart{
		ID:       uuid.New(),
		UserID:   &userCopy,
		Currency: enums.CurrencyARS,
		Status:   enums.CartStatusOpen,
	})
	if err != nil {
		t.Fatalf("create stray: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), first.ID, ItemInput{ProductID: product.ID, Qty: 2}); err != nil {
		t.Fatalf("add to first: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), stray.ID, ItemInput{ProductID: product.ID, Qty: 3}); err != nil {
		t.Fatalf("add to stray: %v", err)
	}

	merged, err := svc.Get(context.Background(), first.ID, GetOptions{UserID: user})
	if err != nil {
		t.Fatalf("get with merge: %v", err)
	}
	if len(merged.Items) != 1 {
		t.Fatalf("expected one folded line, got %d", len(merged.Items))
	}
	if merged.Items[0].Qty != 5 {
		t.Fatalf("expected qty 5 after merge, got %v", merged.Items[0].Qty)
	}
	closed, err := repo.FindByID(context.Background(), stray.ID)
	if err != nil {
		t.Fatalf("reload stray: %v", err)
	}
	if closed.Status != enums.CartStatusClosed {
		t.Fatalf("expected stray cart closed, got %s", closed.Status)
	}
}

func TestServiceAddItemMergesByAttributes(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	product := testProduct(100, 0)
	loader.products[product.ID] = product
	svc := newTestService(t, repo, loader)

	record, err := svc.Create(context.Background(), CreateCartInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), record.ID, ItemInput{
		ProductID:  product.ID,
		Qty:        2,
		Attributes: types.Attributes{"medida": "2x4", "nota": ""},
	}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	record, err = svc.AddItem(context.Background(), record.ID, ItemInput{
		ProductID:  product.ID,
		Qty:        3,
		Attributes: types.Attributes{"medida": " 2x4 "},
	})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(record.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(record.Items))
	}
	if record.Items[0].Qty != 5 {
		t.Fatalf("expected qty 5, got %v", record.Items[0].Qty)
	}
	if record.Subtotal != 500 {
		t.Fatalf("expected subtotal 500, got %v", record.Subtotal)
	}
	if record.Taxes != 105 {
		t.Fatalf("expected taxes 105, got %v", record.Taxes)
	}
	if record.Shipping != 250 {
		t.Fatalf("expected flat shipping 250, got %v", record.Shipping)
	}
	if record.Total != 855 {
		t.Fatalf("expected total 855, got %v", record.Total)
	}
}

func TestServiceAddItemDistinctAttributesKeepSeparateLines(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	product := testProduct(100, 0.15)
	loader.products[product.ID] = product
	svc := newTestService(t, repo, loader)

	record, err := svc.Create(context.Background(), CreateCartInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), record.ID, ItemInput{ProductID: product.ID, Qty: 1}); err != nil {
		t.Fatalf("plain add: %v", err)
	}
	record, err = svc.AddItem(context.Background(), record.ID, ItemInput{
		ProductID:  product.ID,
		Qty:        1,
		Attributes: types.Attributes{"acabado": "cepillado"},
	})
	if err != nil {
		t.Fatalf("planed add: %v", err)
	}

	if len(record.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(record.Items))
	}
	prices := map[float64]bool{}
	for _, item := range record.Items {
		prices[item.UnitPrice] = true
	}
	if !prices[100] || !prices[115] {
		t.Fatalf("expected unit prices 100 and 115, got %+v", record.Items)
	}
}

func TestServiceAddItemListsAllViolations(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, &stubProductLoader{})

	record, err := svc.Create(context.Background(), CreateCartInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.AddItem(context.Background(), record.ID, ItemInput{Qty: 0})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := typed.Error()
	if !strings.Contains(msg, "productoId") || !strings.Contains(msg, "cantidad") {
		t.Fatalf("expected both violations in message, got %q", msg)
	}
}

func TestServiceClosedCartRejectsMutations(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	product := testProduct(100, 0)
	loader.products[product.ID] = product
	svc := newTestService(t, repo, loader)

	record, err := svc.Create(context.Background(), CreateCartInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Close(context.Background(), record.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = svc.AddItem(context.Background(), record.ID, ItemInput{ProductID: product.ID, Qty: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if _, err := svc.Get(context.Background(), record.ID, GetOptions{}); err != nil {
		t.Fatalf("closed cart must stay readable: %v", err)
	}
	if _, err := svc.Close(context.Background(), record.ID); err != nil {
		t.Fatalf("closing twice must be a no-op: %v", err)
	}
}

func TestServiceUpdateItemFoldsOnAttributeCollision(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	product := testProduct(100, 0)
	loader.products[product.ID] = product
	svc := newTestService(t, repo, loader)

	record, err := svc.Create(context.Background(), CreateCartInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), record.ID, ItemInput{
		ProductID:  product.ID,
		Qty:        2,
		Attributes: types.Attributes{"medida": "2x4"},
	}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	record, err = svc.AddItem(context.Background(), record.ID, ItemInput{
		ProductID:  product.ID,
		Qty:        3,
		Attributes: types.Attributes{"medida": "2x6"},
	})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	var target uuid.UUID
	for _, item := range record.Items {
		if item.Attributes["medida"] == "2x6" {
			target = item.ID
		}
	}

	attrs := types.Attributes{"medida": "2x4"}
	record, err = svc.UpdateItem(context.Background(), record.ID, target, ItemPatch{Attributes: &attrs})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(record.Items) != 1 {
		t.Fatalf("expected one folded line, got %d", len(record.Items))
	}
	if record.Items[0].Qty != 5 {
		t.Fatalf("expected qty 5, got %v", record.Items[0].Qty)
	}
}

func TestServiceRemoveAndClear(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	product := testProduct(100, 0)
	loader.products[product.ID] = product
	svc := newTestService(t, repo, loader)

	record, err := svc.Create(context.Background(), CreateCartInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	record, err = svc.AddItem(context.Background(), record.ID, ItemInput{ProductID: product.ID, Qty: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = svc.RemoveItem(context.Background(), record.ID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}

	record, err = svc.RemoveItem(context.Background(), record.ID, record.Items[0].ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(record.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(record.Items))
	}
	if record.Total != 0 || record.Shipping != 0 {
		t.Fatalf("expected zero totals for empty cart, got %+v", record)
	}

	if _, err := svc.AddItem(context.Background(), record.ID, ItemInput{ProductID: product.ID, Qty: 1}); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	record, err = svc.Clear(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(record.Items) != 0 {
		t.Fatalf("expected cleared cart, got %d items", len(record.Items))
	}
}
