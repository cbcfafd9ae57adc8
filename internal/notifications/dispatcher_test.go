package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/events"
	"github.com/aresconnect/ares-connect-backend/pkg/events/idempotency"
)

type fakeChannel struct {
	name    enums.NotificationChannel
	only    enums.AlertEventType
	mu      sync.Mutex
	sent    []events.Envelope
	failFor int
	block   chan struct{}
}

func (f *fakeChannel) Name() enums.NotificationChannel { return f.name }

func (f *fakeChannel) Accepts(eventType enums.AlertEventType) bool {
	return f.only == "" || f.only == eventType
}

func (f *fakeChannel) Send(ctx context.Context, env events.Envelope) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor > 0 {
		f.failFor--
		return errors.New("channel unavailable")
	}
	f.sent = append(f.sent, env)
	return nil
}

func (f *fakeChannel) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newDispatcher(t *testing.T, params DispatcherParams) *Dispatcher {
	t.Helper()
	params.Logger = testLogger()
	d, err := NewDispatcher(params)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d
}

func TestDeliverSendsToAcceptingChannels(t *testing.T) {
	all := &fakeChannel{name: enums.NotificationChannelPubSub}
	createdOnly := &fakeChannel{name: enums.NotificationChannelInbox, only: enums.AlertEventCreated}
	d := newDispatcher(t, DispatcherParams{Channels: []Channel{all, createdOnly}})

	if err := d.Deliver(context.Background(), createdEnvelope(t)); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	deleted, _ := events.NewEnvelope(enums.AlertEventDeleted, uuid.New(), uuid.New(), nil, events.AlertDeletedEvent{})
	if err := d.Deliver(context.Background(), deleted); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if all.count() != 2 {
		t.Fatalf("expected both events on the pubsub channel, got %d", all.count())
	}
	if createdOnly.count() != 1 {
		t.Fatalf("expected only the create on the inbox channel, got %d", createdOnly.count())
	}
}

func TestDeliverCombinesChannelErrors(t *testing.T) {
	a := &fakeChannel{name: enums.NotificationChannelPubSub, failFor: 1}
	b := &fakeChannel{name: enums.NotificationChannelNATS, failFor: 1}
	ok := &fakeChannel{name: enums.NotificationChannelInbox}
	d := newDispatcher(t, DispatcherParams{Channels: []Channel{a, b, ok}})

	err := d.Deliver(context.Background(), createdEnvelope(t))
	if err == nil {
		t.Fatal("expected combined error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 channel errors, got %d: %v", got, err)
	}
	if ok.count() != 1 {
		t.Fatal("a failing channel must not stop the others")
	}
}

func TestDeliverIsAtMostOncePerChannel(t *testing.T) {
	markers := newMemoryMarkers()
	manager, err := idempotency.NewManager(markers, time.Hour)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	ch := &fakeChannel{name: enums.NotificationChannelNATS}
	d := newDispatcher(t, DispatcherParams{Channels: []Channel{ch}, Idempotency: manager})

	env := createdEnvelope(t)
	for i := 0; i < 3; i++ {
		if err := d.Deliver(context.Background(), env); err != nil {
			t.Fatalf("deliver %d: %v", i, err)
		}
	}
	if ch.count() != 1 {
		t.Fatalf("expected a single send, got %d", ch.count())
	}
}

func TestDeliverReleasesMarkerOnFailure(t *testing.T) {
	markers := newMemoryMarkers()
	manager, _ := idempotency.NewManager(markers, time.Hour)
	ch := &fakeChannel{name: enums.NotificationChannelPubSub, failFor: 1}
	d := newDispatcher(t, DispatcherParams{Channels: []Channel{ch}, Idempotency: manager})

	env := createdEnvelope(t)
	if err := d.Deliver(context.Background(), env); err == nil {
		t.Fatal("expected first delivery to fail")
	}
	if markers.len() != 0 {
		t.Fatal("expected marker released after failure")
	}
	if err := d.Deliver(context.Background(), env); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if ch.count() != 1 {
		t.Fatalf("expected retry to send, got %d", ch.count())
	}
}

func TestDeliverSendsWhenMarkerStoreDown(t *testing.T) {
	markers := newMemoryMarkers()
	markers.setErr = errors.New("redis down")
	manager, _ := idempotency.NewManager(markers, time.Hour)
	ch := &fakeChannel{name: enums.NotificationChannelPubSub}
	d := newDispatcher(t, DispatcherParams{Channels: []Channel{ch}, Idempotency: manager})

	if err := d.Deliver(context.Background(), createdEnvelope(t)); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if ch.count() != 1 {
		t.Fatal("expected send despite marker failure")
	}
}

func TestDeliverHonoursSendTimeout(t *testing.T) {
	ch := &fakeChannel{name: enums.NotificationChannelPubSub, block: make(chan struct{})}
	d := newDispatcher(t, DispatcherParams{Channels: []Channel{ch}, SendTimeout: 20 * time.Millisecond})

	err := d.Deliver(context.Background(), createdEnvelope(t))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPublishQueueFull(t *testing.T) {
	d := newDispatcher(t, DispatcherParams{QueueSize: 1})
	if err := d.Publish(context.Background(), createdEnvelope(t)); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	err := d.Publish(context.Background(), createdEnvelope(t))
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotificationDispatch) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
}

func TestRunDeliversQueuedAndStops(t *testing.T) {
	ch := &fakeChannel{name: enums.NotificationChannelRealtime}
	d := newDispatcher(t, DispatcherParams{Channels: []Channel{ch}, Workers: 2, QueueSize: 8})

	for i := 0; i < 5; i++ {
		if err := d.Publish(context.Background(), createdEnvelope(t)); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}

	if ch.count() != 5 {
		t.Fatalf("expected queued events drained, got %d", ch.count())
	}
	if err := d.Publish(context.Background(), createdEnvelope(t)); !pkgerrors.IsCode(err, pkgerrors.CodeNotificationDispatch) {
		t.Fatalf("expected stopped dispatcher to reject, got %v", err)
	}
	if err := d.Run(context.Background()); err == nil {
		t.Fatal("expected second run to fail")
	}
}
