package enums

import "fmt"

// PickupStatus tracks a pickup request through its lifecycle.
type PickupStatus string

const (
	PickupStatusPending   PickupStatus = "pending"
	PickupStatusConfirmed PickupStatus = "confirmed"
	PickupStatusInTransit PickupStatus = "in_transit"
	PickupStatusDelivered PickupStatus = "delivered"
	PickupStatusCancelled PickupStatus = "cancelled"
)

var validPickupStatuses = []PickupStatus{
	PickupStatusPending,
	PickupStatusConfirmed,
	PickupStatusInTransit,
	PickupStatusDelivered,
	PickupStatusCancelled,
}

// String implements fmt.Stringer.
func (s PickupStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PickupStatus.
func (s PickupStatus) IsValid() bool {
	for _, candidate := range validPickupStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePickupStatus converts raw input into a PickupStatus.
func ParsePickupStatus(value string) (PickupStatus, error) {
	for _, candidate := range validPickupStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup status %q", value)
}
