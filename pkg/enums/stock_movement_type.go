package enums

import "fmt"

// StockMovementType classifies ledger rows written when on-hand stock changes.
type StockMovementType string

const (
	StockMovementSale       StockMovementType = "venta"
	StockMovementAdjustment StockMovementType = "ajuste"
	StockMovementRestock    StockMovementType = "reposicion"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementSale,
	StockMovementAdjustment,
	StockMovementRestock,
}

// String implements fmt.Stringer.
func (s StockMovementType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockMovementType.
func (s StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockMovementType converts raw input into a StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}
