// Package idempotency claims (consumer, event) pairs so redelivered alert envelopes are processed once.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MarkerStore is the slice of the redis client the manager needs. *redis.Client satisfies it.
type MarkerStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DeliveryKey(consumer, eventID string) string
}

var (
	errConsumerRequired = errors.New("consumer name is required")
	errEventIDRequired  = errors.New("event id is required")
)

// Manager stores one marker per consumer and event, `ares:delivery:<consumer>:<event_id>`, that
// expires after ttl. A zero ttl keeps markers forever.
type Manager struct {
	store MarkerStore
	ttl   time.Duration
}

func NewManager(store MarkerStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed reports whether consumer already saw eventID; otherwise it claims the event.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := m.markerKey(consumer, eventID)
	if err != nil {
		return false, err
	}
	claimed, err := m.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Release drops the claim so a later delivery can retry.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.markerKey(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) markerKey(consumer string, eventID uuid.UUID) (string, error) {
	switch {
	case consumer == "":
		return "", errConsumerRequired
	case eventID == uuid.Nil:
		return "", errEventIDRequired
	}
	return m.store.DeliveryKey(consumer, eventID.String()), nil
}
