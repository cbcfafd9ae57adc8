package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

// AlertCreatedEvent is the notification request emitted when a new alert is persisted.
type AlertCreatedEvent struct {
	GroupID   uuid.UUID        `json:"groupId"`
	AlertID   uuid.UUID        `json:"alertId"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Level     enums.AlertLevel `json:"level"`
	CreatedBy uuid.UUID        `json:"createdBy"`
	CreatedAt time.Time        `json:"createdAt"`
}

// AlertUpdatedEvent carries the post-update alert fields.
type AlertUpdatedEvent struct {
	AlertID   uuid.UUID        `json:"alertId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Level     enums.AlertLevel `json:"level"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// AlertDeletedEvent signals that an alert and its acknowledgments are gone.
type AlertDeletedEvent struct {
	AlertID uuid.UUID `json:"alertId"`
}

// AlertAcknowledgedEvent is emitted for each applied acknowledgment.
type AlertAcknowledgedEvent struct {
	AlertID        uuid.UUID `json:"alertId"`
	UserID         uuid.UUID `json:"userId"`
	UserName       string    `json:"userName"`
	UserCallsign   string    `json:"userCallsign,omitempty"`
	AcknowledgedAt time.Time `json:"timestamp"`
}
