package enums

import "fmt"

// DealStatus tracks the lifecycle of a deal between a seller and a supplier.
type DealStatus string

const (
	DealStatusDealing         DealStatus = "dealing"
	DealStatusAccepted        DealStatus = "accepted"
	DealStatusAssigningDriver DealStatus = "assigning_driver"
	DealStatusInDelivery      DealStatus = "in_delivery"
	DealStatusCompleted       DealStatus = "completed"
	DealStatusRejected        DealStatus = "rejected"
	DealStatusCanceled        DealStatus = "canceled"
)

var validDealStatuses = []DealStatus{
	DealStatusDealing,
	DealStatusAccepted,
	DealStatusAssigningDriver,
	DealStatusInDelivery,
	DealStatusCompleted,
	DealStatusRejected,
	DealStatusCanceled,
}

// String implements fmt.Stringer.
func (d DealStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DealStatus.
func (d DealStatus) IsValid() bool {
	for _, candidate := range validDealStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status.
func (d DealStatus) IsTerminal() bool {
	switch d {
	case DealStatusCompleted, DealStatusRejected, DealStatusCanceled:
		return true
	default:
		return false
	}
}

// ParseDealStatus converts raw input into a DealStatus.
func ParseDealStatus(value string) (DealStatus, error) {
	for _, candidate := range validDealStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal status %q", value)
}
