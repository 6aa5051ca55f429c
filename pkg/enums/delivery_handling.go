package enums

import "fmt"

// DeliveryHandling identifies who moves the goods once a deal is accepted:
// a driver dispatched through the platform, or one of the parties themselves.
type DeliveryHandling string

const (
	DeliveryHandlingSystemDriver DeliveryHandling = "system_driver"
	DeliveryHandlingSupplier     DeliveryHandling = "supplier"
	DeliveryHandlingSeller       DeliveryHandling = "seller"
)

var validDeliveryHandlings = []DeliveryHandling{
	DeliveryHandlingSystemDriver,
	DeliveryHandlingSupplier,
	DeliveryHandlingSeller,
}

// String implements fmt.Stringer.
func (d DeliveryHandling) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryHandling.
func (d DeliveryHandling) IsValid() bool {
	for _, candidate := range validDeliveryHandlings {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryHandling converts raw input into a DeliveryHandling.
func ParseDeliveryHandling(value string) (DeliveryHandling, error) {
	for _, candidate := range validDeliveryHandlings {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery handling %q", value)
}
