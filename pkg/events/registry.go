package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

type decoderFunc func(payload json.RawMessage) (any, error)

type registryKey struct {
	eventType enums.AlertEventType
	version   int
}

// DecoderRegistry stores versioned payload decoders for consumers.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	registry map[registryKey]decoderFunc
}

// NewDecoderRegistry builds an empty decoder registry.
func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{registry: make(map[registryKey]decoderFunc)}
}

// DefaultRegistry knows every alert lifecycle payload at the current version.
func DefaultRegistry() *DecoderRegistry {
	reg := NewDecoderRegistry()
	reg.Register(enums.AlertEventCreated, EnvelopeVersion, decodeInto[AlertCreatedEvent])
	reg.Register(enums.AlertEventUpdated, EnvelopeVersion, decodeInto[AlertUpdatedEvent])
	reg.Register(enums.AlertEventDeleted, EnvelopeVersion, decodeInto[AlertDeletedEvent])
	reg.Register(enums.AlertEventAcknowledged, EnvelopeVersion, decodeInto[AlertAcknowledgedEvent])
	return reg
}

// Register stores a decoder for the given event type and version.
func (r *DecoderRegistry) Register(eventType enums.AlertEventType, version int, decoder decoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.registry[registryKey{eventType: eventType, version: version}] = decoder
}

// Decode runs the decoder registered for the envelope's type and version.
func (r *DecoderRegistry) Decode(env Envelope) (any, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if decoder, ok := r.registry[registryKey{eventType: env.Type, version: env.Version}]; ok {
		return decoder(env.Data)
	}
	return nil, fmt.Errorf("decoder not registered for %s@v%d", env.Type, env.Version)
}

func decodeInto[T any](payload json.RawMessage) (any, error) {
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
