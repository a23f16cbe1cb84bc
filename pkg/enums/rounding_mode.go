package enums

import "fmt"

// RoundingMode selects the single point where a price computation rounds.
// "unit" rounds the unit price before multiplying, "total" rounds once at
// the final amount, "none" never rounds. A computation rounds at most once.
type RoundingMode string

const (
	RoundingNone  RoundingMode = "none"
	RoundingUnit  RoundingMode = "unit"
	RoundingTotal RoundingMode = "total"
)

var validRoundingModes = []RoundingMode{
	RoundingNone,
	RoundingUnit,
	RoundingTotal,
}

// String implements fmt.Stringer.
func (r RoundingMode) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RoundingMode.
func (r RoundingMode) IsValid() bool {
	for _, candidate := range validRoundingModes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRoundingMode converts raw input into a RoundingMode.
func ParseRoundingMode(value string) (RoundingMode, error) {
	for _, candidate := range validRoundingModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rounding mode %q", value)
}
