package enums

import "fmt"

// EventType labels recorded analytics events.
type EventType string

const (
	EventPickupRequested     EventType = "pickup_requested"
	EventPickupStatusChanged EventType = "pickup_status_changed"
	EventPickupBulkUpdated   EventType = "pickup_bulk_updated"
	EventUserSignedIn        EventType = "user_signed_in"
	EventRouteViewed         EventType = "route_viewed"
)

var validEventTypes = []EventType{
	EventPickupRequested,
	EventPickupStatusChanged,
	EventPickupBulkUpdated,
	EventUserSignedIn,
	EventRouteViewed,
}

// String implements fmt.Stringer.
func (e EventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventType.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into an EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
