package enums

import "fmt"

// AlertEventType names the events emitted by the alert lifecycle.
type AlertEventType string

const (
	AlertEventCreated      AlertEventType = "alert_created"
	AlertEventUpdated      AlertEventType = "alert_updated"
	AlertEventDeleted      AlertEventType = "alert_deleted"
	AlertEventAcknowledged AlertEventType = "alert_acknowledged"
)

var validAlertEventTypes = []AlertEventType{
	AlertEventCreated,
	AlertEventUpdated,
	AlertEventDeleted,
	AlertEventAcknowledged,
}

func (e AlertEventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known AlertEventType.
func (e AlertEventType) IsValid() bool {
	for _, candidate := range validAlertEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseAlertEventType converts raw input into an AlertEventType.
func ParseAlertEventType(value string) (AlertEventType, error) {
	for _, candidate := range validAlertEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert event type %q", value)
}
