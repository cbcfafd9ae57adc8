package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

// EnvelopeVersion is bumped whenever a payload changes shape incompatibly.
const EnvelopeVersion = 1

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name,omitempty"`
}

// Envelope is the stable wire structure for alert lifecycle events.
type Envelope struct {
	Version    int                  `json:"version"`
	EventID    uuid.UUID            `json:"eventId"`
	Type       enums.AlertEventType `json:"type"`
	GroupID    uuid.UUID            `json:"groupId"`
	AlertID    uuid.UUID            `json:"alertId"`
	OccurredAt time.Time            `json:"occurredAt"`
	Actor      *ActorRef            `json:"actor,omitempty"`
	Data       json.RawMessage      `json:"data"`
}

// NewEnvelope marshals payload into a fresh envelope.
func NewEnvelope(eventType enums.AlertEventType, groupID, alertID uuid.UUID, actor *ActorRef, payload any) (Envelope, error) {
	if !eventType.IsValid() {
		return Envelope{}, fmt.Errorf("invalid event type %q", eventType)
	}
	if groupID == uuid.Nil {
		return Envelope{}, errors.New("group id is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		Version:    EnvelopeVersion,
		EventID:    uuid.New(),
		Type:       eventType,
		GroupID:    groupID,
		AlertID:    alertID,
		OccurredAt: time.Now().UTC(),
		Actor:      actor,
		Data:       data,
	}, nil
}

// Marshal encodes the envelope for transports that carry raw bytes.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope decodes raw bytes and checks the mandatory fields.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventID == uuid.Nil {
		return Envelope{}, errors.New("envelope missing event id")
	}
	if !env.Type.IsValid() {
		return Envelope{}, fmt.Errorf("envelope has unknown type %q", env.Type)
	}
	return env, nil
}
