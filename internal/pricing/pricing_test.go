package pricing

import (
	"math"
	"testing"

	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
)

func testProduct(price, surcharge float64) *models.Product {
	return &models.Product{
		Name:                "Tabla pino 1x6",
		SKU:                 "PIN-1X6",
		UnitPrice:           price,
		FinishSurchargeRate: surcharge,
	}
}

func TestQuoteProductBasic(t *testing.T) {
	t.Parallel()

	quote, err := QuoteProduct(testProduct(100, 0.1), QuoteInput{Qty: 3, Rounding: enums.RoundingTotal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.UnitPrice != 100 {
		t.Fatalf("unexpected unit price %v", quote.UnitPrice)
	}
	if quote.TotalFinal != 300 {
		t.Fatalf("unexpected total %v", quote.TotalFinal)
	}
	if quote.Discount != 0 {
		t.Fatalf("expected zero discount, got %v", quote.Discount)
	}
}

func TestQuoteProductFinishSurcharge(t *testing.T) {
	t.Parallel()

	quote, err := QuoteProduct(testProduct(100, 0.15), QuoteInput{Qty: 2, FinishSurcharge: true, Rounding: enums.RoundingTotal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.UnitPrice != 115 {
		t.Fatalf("expected surcharged unit 115, got %v", quote.UnitPrice)
	}
	if quote.TotalFinal != 230 {
		t.Fatalf("expected total 230, got %v", quote.TotalFinal)
	}
}

func TestQuoteProductSingleRoundingPoint(t *testing.T) {
	t.Parallel()

	// 33.335 * 3 = 100.005. Rounding at the unit first gives a different
	// answer than rounding the total once; both must stay single-point.
	product := testProduct(33.335, 0)

	unitMode, err := QuoteProduct(product, QuoteInput{Qty: 3, Rounding: enums.RoundingUnit})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unitMode.UnitPrice != 33.34 {
		t.Fatalf("expected rounded unit 33.34, got %v", unitMode.UnitPrice)
	}
	if unitMode.TotalFinal != 100.02 {
		t.Fatalf("expected unit-mode total 100.02, got %v", unitMode.TotalFinal)
	}

	totalMode, err := QuoteProduct(product, QuoteInput{Qty: 3, Rounding: enums.RoundingTotal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totalMode.TotalFinal != 100.01 {
		t.Fatalf("expected total-mode total 100.01, got %v", totalMode.TotalFinal)
	}

	noneMode, err := QuoteProduct(product, QuoteInput{Qty: 3, Rounding: enums.RoundingNone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if noneMode.TotalFinal != 100.005 {
		t.Fatalf("expected unrounded total 100.005, got %v", noneMode.TotalFinal)
	}
}

func TestQuoteProductInvalidQuantities(t *testing.T) {
	t.Parallel()

	for _, qty := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := QuoteProduct(testProduct(10, 0), QuoteInput{Qty: qty})
		if err == nil {
			t.Fatalf("expected error for qty %v", qty)
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for qty %v, got %v", qty, err)
		}
	}
}

func TestQuoteProductInvalidRounding(t *testing.T) {
	t.Parallel()

	_, err := QuoteProduct(testProduct(10, 0), QuoteInput{Qty: 1, Rounding: enums.RoundingMode("twice")})
	if err == nil {
		t.Fatal("expected error for unknown rounding mode")
	}
}

func TestQuoteProductMonotonicInQty(t *testing.T) {
	t.Parallel()

	product := testProduct(19.99, 0.08)
	prev := 0.0
	for _, qty := range []float64{0.5, 1, 2, 2.5, 7, 40, 1000} {
		quote, err := QuoteProduct(product, QuoteInput{Qty: qty, FinishSurcharge: true, Rounding: enums.RoundingTotal})
		if err != nil {
			t.Fatalf("unexpected error at qty %v: %v", qty, err)
		}
		if quote.TotalFinal < prev {
			t.Fatalf("total decreased at qty %v: %v < %v", qty, quote.TotalFinal, prev)
		}
		prev = quote.TotalFinal
	}
}

func TestQuoteMatchesUnitTimesQty(t *testing.T) {
	t.Parallel()

	product := testProduct(12.34, 0)
	for _, qty := range []float64{1, 2, 3, 10, 250} {
		quote, err := QuoteProduct(product, QuoteInput{Qty: qty, Rounding: enums.RoundingTotal})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := product.UnitPrice * qty
		if math.Abs(quote.TotalFinal-expected) > 0.005 {
			t.Fatalf("qty %v: total %v too far from %v", qty, quote.TotalFinal, expected)
		}
	}
}

func TestCartTotals(t *testing.T) {
	t.Parallel()

	items := []models.CartItem{
		{UnitPrice: 100, Qty: 2},
		{UnitPrice: 49.5, Qty: 1},
	}

	totals := CartTotals(items, 0.21, 1500, enums.RoundingTotal)
	if totals.Subtotal != 249.5 {
		t.Fatalf("unexpected subtotal %v", totals.Subtotal)
	}
	if totals.Taxes != 52.4 {
		t.Fatalf("unexpected taxes %v", totals.Taxes)
	}
	if totals.Shipping != 1500 {
		t.Fatalf("unexpected shipping %v", totals.Shipping)
	}
	if totals.Total != 1801.9 {
		t.Fatalf("unexpected total %v", totals.Total)
	}
}

func TestCartTotalsEmptyCart(t *testing.T) {
	t.Parallel()

	totals := CartTotals(nil, 0.21, 1500, enums.RoundingTotal)
	if totals.Subtotal != 0 || totals.Taxes != 0 || totals.Shipping != 0 || totals.Total != 0 {
		t.Fatalf("empty cart should produce zero totals, got %+v", totals)
	}
}
