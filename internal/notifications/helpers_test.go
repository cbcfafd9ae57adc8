package notifications

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	"github.com/aresconnect/ares-connect-backend/pkg/events"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

// memoryMarkers is a map-backed idempotency store.
type memoryMarkers struct {
	mu     sync.Mutex
	keys   map[string]string
	setErr error
}

func newMemoryMarkers() *memoryMarkers {
	return &memoryMarkers{keys: make(map[string]string)}
}

func (m *memoryMarkers) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return false, m.setErr
	}
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = "1"
	return true, nil
}

func (m *memoryMarkers) DeliveryKey(consumer, eventID string) string {
	return "ares:delivery:" + consumer + ":" + eventID
}

func (m *memoryMarkers) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.keys, k)
	}
	return nil
}

func (m *memoryMarkers) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

func createdEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	groupID, alertID := uuid.New(), uuid.New()
	env, err := events.NewEnvelope(enums.AlertEventCreated, groupID, alertID, nil, events.AlertCreatedEvent{
		GroupID:   groupID,
		AlertID:   alertID,
		Title:     "Severe weather",
		Body:      "Tornado warning for the county. Stand by on the primary repeater.",
		Level:     enums.AlertLevelStandby,
		CreatedBy: uuid.New(),
		CreatedAt: time.Date(2026, 4, 20, 17, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	return env
}
