package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
)

const testSchema = `
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  customer_id TEXT,
  status TEXT NOT NULL DEFAULT 'pendiente',
  currency TEXT NOT NULL DEFAULT 'ARS',
  delivery_method TEXT NOT NULL DEFAULT 'retiro',
  payment_ref TEXT,
  subtotal REAL NOT NULL,
  taxes REAL NOT NULL DEFAULT 0,
  shipping REAL NOT NULL DEFAULT 0,
  total REAL NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  attributes TEXT,
  unit_price REAL NOT NULL,
  qty REAL NOT NULL,
  total REAL NOT NULL,
  created_at DATETIME
);
CREATE TABLE stock_movements (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  order_id TEXT,
  qty REAL NOT NULL,
  type TEXT NOT NULL,
  created_at DATETIME
);
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.Exec(testSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return conn
}

func seedOrder(t *testing.T, repo Repository) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:             uuid.New(),
		CartID:         uuid.New(),
		Status:         enums.OrderStatusPending,
		Currency:       enums.CurrencyARS,
		DeliveryMethod: enums.DeliveryMethodPickup,
		Subtotal:       100,
		Taxes:          21,
		Total:          121,
	}
	if _, err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestCreateAndFindWithLines(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	order := seedOrder(t, repo)

	lines := []models.OrderLineItem{
		{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: uuid.New(),
			Name:      "Tabla pino 2x4",
			SKU:       "PIN-2X4",
			UnitPrice: 50,
			Qty:       2,
			Total:     100,
		},
	}
	if err := repo.CreateLineItems(context.Background(), lines); err != nil {
		t.Fatalf("create lines: %v", err)
	}

	stored, err := repo.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].SKU != "PIN-2X4" {
		t.Fatalf("expected preloaded line, got %+v", stored.Items)
	}
	if stored.Total != 121 {
		t.Fatalf("unexpected total %v", stored.Total)
	}
}

func TestCreateMovementsSkipsEmptyBatch(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	if err := repo.CreateMovements(context.Background(), nil); err != nil {
		t.Fatalf("empty batch should be a no-op: %v", err)
	}

	order := seedOrder(t, repo)
	orderID := order.ID
	movements := []models.StockMovement{
		{ID: uuid.New(), ProductID: uuid.New(), OrderID: &orderID, Qty: -2, Type: enums.StockMovementSale},
	}
	if err := repo.CreateMovements(context.Background(), movements); err != nil {
		t.Fatalf("create movements: %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	order := seedOrder(t, repo)

	if err := repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPaid); err != nil {
		t.Fatalf("update status: %v", err)
	}
	stored, err := repo.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if stored.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid status, got %s", stored.Status)
	}
}
