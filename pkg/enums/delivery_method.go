package enums

import "fmt"

// DeliveryMethod decides whether checkout produces a shipment record.
type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "retiro"
	DeliveryMethodShipping DeliveryMethod = "envio"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodPickup,
	DeliveryMethodShipping,
}

// RequiresShipment reports whether the method produces a shipment.
func (d DeliveryMethod) RequiresShipment() bool {
	return d == DeliveryMethodShipping
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
