// Package realtime pushes alert lifecycle events to the websocket clients of a group.
package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	"github.com/aresconnect/ares-connect-backend/pkg/events"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
	"github.com/aresconnect/ares-connect-backend/pkg/metrics"
)

var errHubStopped = errors.New("realtime hub stopped")

type broadcast struct {
	groupID uuid.UUID
	payload []byte
}

// Hub tracks connected clients per group. Run owns registration; the client map is guarded so
// counts can be read from other goroutines.
type Hub struct {
	logg    *logger.Logger
	metrics *metrics.AlertMetrics

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcast
	done       chan struct{}
	stopOnce   sync.Once

	mu     sync.RWMutex
	groups map[uuid.UUID]map[*Client]struct{}
	total  int
}

func NewHub(logg *logger.Logger, m *metrics.AlertMetrics) (*Hub, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Hub{
		logg:       logg,
		metrics:    m,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcast, 64),
		done:       make(chan struct{}),
		groups:     make(map[uuid.UUID]map[*Client]struct{}),
	}, nil
}

// Run processes registrations and broadcasts until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	h.logg.Info(ctx, "realtime hub started")
	defer h.shutdown(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.fanOut(ctx, msg)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	clients, ok := h.groups[c.groupID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.groups[c.groupID] = clients
	}
	clients[c] = struct{}{}
	h.total++
	total := h.total
	h.mu.Unlock()
	h.metrics.SetRealtimeClients(total)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	clients, ok := h.groups[c.groupID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.groups, c.groupID)
	}
	close(c.send)
	h.total--
	total := h.total
	h.mu.Unlock()
	h.metrics.SetRealtimeClients(total)
}

func (h *Hub) fanOut(ctx context.Context, msg broadcast) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.groups[msg.groupID] {
		select {
		case c.send <- msg.payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logg.Warn(h.logg.WithFields(ctx, map[string]any{
			"group_id": c.groupID.String(),
			"user_id":  c.userID.String(),
		}), "realtime client too slow, disconnecting")
		h.remove(c)
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	for groupID, clients := range h.groups {
		for c := range clients {
			close(c.send)
		}
		delete(h.groups, groupID)
	}
	h.total = 0
	h.mu.Unlock()
	h.stopOnce.Do(func() { close(h.done) })
	h.metrics.SetRealtimeClients(0)
	h.logg.Info(ctx, "realtime hub stopped")
}

// ClientCount returns the number of clients connected for groupID.
func (h *Hub) ClientCount(groupID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}

// Name, Accepts and Send let the notification dispatcher treat the hub as a channel.
func (h *Hub) Name() enums.NotificationChannel { return enums.NotificationChannelRealtime }

func (h *Hub) Accepts(enums.AlertEventType) bool { return true }

func (h *Hub) Send(ctx context.Context, env events.Envelope) error {
	select {
	case <-h.done:
		return errHubStopped
	default:
	}
	payload, err := env.Marshal()
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- broadcast{groupID: env.GroupID, payload: payload}:
		return nil
	case <-h.done:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
