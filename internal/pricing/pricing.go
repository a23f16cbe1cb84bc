package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
)

// moneyPlaces is the scale every rounded amount is expressed in.
const moneyPlaces = 2

// QuoteInput captures the per-request knobs of a price computation.
type QuoteInput struct {
	Qty             float64
	FinishSurcharge bool
	Rounding        enums.RoundingMode
}

// Quote is the result of pricing one product at a given quantity.
type Quote struct {
	UnitPrice           float64 `json:"precioUnitario"`
	TotalBeforeDiscount float64 `json:"totalBruto"`
	Discount            float64 `json:"descuento"`
	TotalFinal          float64 `json:"totalFinal"`
}

// Totals are the derived amounts recomputed from a cart's items.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Taxes    float64 `json:"impuestos"`
	Shipping float64 `json:"envio"`
	Total    float64 `json:"total"`
}

// QuoteProduct prices a product for the requested quantity. The computation is
// pure and safe for concurrent use. The rounding mode picks the single point
// where rounding happens; a quote never rounds twice.
func QuoteProduct(product *models.Product, input QuoteInput) (*Quote, error) {
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if err := ValidateQty(input.Qty); err != nil {
		return nil, err
	}
	mode := input.Rounding
	if mode == "" {
		mode = enums.RoundingTotal
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid rounding mode").
			WithDetails(map[string]any{"rounding": string(input.Rounding)})
	}

	unit := decimal.NewFromFloat(product.UnitPrice)
	if input.FinishSurcharge {
		rate := decimal.NewFromFloat(product.FinishSurchargeRate)
		unit = unit.Add(unit.Mul(rate))
	}

	qty := decimal.NewFromFloat(input.Qty)

	var total decimal.Decimal
	switch mode {
	case enums.RoundingUnit:
		unit = unit.Round(moneyPlaces)
		total = unit.Mul(qty)
	case enums.RoundingTotal:
		total = unit.Mul(qty).Round(moneyPlaces)
	case enums.RoundingNone:
		total = unit.Mul(qty)
	}

	return &Quote{
		UnitPrice:           unit.InexactFloat64(),
		TotalBeforeDiscount: total.InexactFloat64(),
		Discount:            0,
		TotalFinal:          total.InexactFloat64(),
	}, nil
}

// LineTotal prices an already-snapshotted cart line at its stored unit price.
func LineTotal(unitPrice, qty float64, mode enums.RoundingMode) (float64, error) {
	if err := ValidateQty(qty); err != nil {
		return 0, err
	}
	unit := decimal.NewFromFloat(unitPrice)
	total := unit.Mul(decimal.NewFromFloat(qty))
	if mode == enums.RoundingUnit {
		total = unit.Round(moneyPlaces).Mul(decimal.NewFromFloat(qty))
	} else if mode != enums.RoundingNone {
		total = total.Round(moneyPlaces)
	}
	return total.InexactFloat64(), nil
}

// CartTotals recomputes a cart's derived amounts from its current items. Line
// amounts are summed before rounding so the subtotal carries a single
// rounding point, matching QuoteProduct's "total" discipline.
func CartTotals(items []models.CartItem, taxRate, shippingFlat float64, mode enums.RoundingMode) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromFloat(item.Qty))
		subtotal = subtotal.Add(line)
	}

	taxes := subtotal.Mul(decimal.NewFromFloat(taxRate))
	shipping := decimal.Zero
	if len(items) > 0 {
		shipping = decimal.NewFromFloat(shippingFlat)
	}
	total := subtotal.Add(taxes).Add(shipping)

	if mode != enums.RoundingNone {
		subtotal = subtotal.Round(moneyPlaces)
		taxes = taxes.Round(moneyPlaces)
		shipping = shipping.Round(moneyPlaces)
		total = total.Round(moneyPlaces)
	}

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Taxes:    taxes.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// ValidateQty rejects non-finite and non-positive quantities.
func ValidateQty(qty float64) error {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive finite number").
			WithDetails(map[string]any{"cantidad": qty})
	}
	return nil
}
