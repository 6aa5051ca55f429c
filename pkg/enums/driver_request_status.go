package enums

import "fmt"

// DriverRequestStatus tracks a delivery offer made to a specific driver.
type DriverRequestStatus string

const (
	DriverRequestStatusPending  DriverRequestStatus = "pending"
	DriverRequestStatusAccepted DriverRequestStatus = "accepted"
	DriverRequestStatusRejected DriverRequestStatus = "rejected"
)

var validDriverRequestStatuses = []DriverRequestStatus{
	DriverRequestStatusPending,
	DriverRequestStatusAccepted,
	DriverRequestStatusRejected,
}

// String implements fmt.Stringer.
func (d DriverRequestStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DriverRequestStatus.
func (d DriverRequestStatus) IsValid() bool {
	for _, candidate := range validDriverRequestStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDriverRequestStatus converts raw input into a DriverRequestStatus.
func ParseDriverRequestStatus(value string) (DriverRequestStatus, error) {
	for _, candidate := range validDriverRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid driver request status %q", value)
}
