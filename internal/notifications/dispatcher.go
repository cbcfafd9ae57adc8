package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/events"
	"github.com/aresconnect/ares-connect-backend/pkg/events/idempotency"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
	"github.com/aresconnect/ares-connect-backend/pkg/metrics"
)

const (
	defaultWorkers     = 2
	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second
)

var (
	errQueueFull         = errors.New("notification queue full")
	errDispatcherStopped = errors.New("notification dispatcher stopped")
)

type DispatcherParams struct {
	Channels []Channel
	// Idempotency is optional. Without it a redelivered envelope is sent again.
	Idempotency *idempotency.Manager
	Logger      *logger.Logger
	Metrics     *metrics.AlertMetrics
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher fans alert events out to every channel from a bounded in-memory queue. Publish never
// blocks; delivery happens on worker goroutines started by Run.
type Dispatcher struct {
	channels    []Channel
	idem        *idempotency.Manager
	logg        *logger.Logger
	metrics     *metrics.AlertMetrics
	workers     int
	sendTimeout time.Duration

	mu      sync.RWMutex
	queue   chan events.Envelope
	closed  bool
	started bool
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	workers := params.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	size := params.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := params.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	for _, ch := range params.Channels {
		if ch == nil {
			return nil, errors.New("nil notification channel")
		}
	}
	return &Dispatcher{
		channels:    params.Channels,
		idem:        params.Idempotency,
		logg:        params.Logger,
		metrics:     params.Metrics,
		workers:     workers,
		sendTimeout: timeout,
		queue:       make(chan events.Envelope, size),
	}, nil
}

// Publish enqueues env. A full queue or a stopped dispatcher is reported as a dispatch error; the
// caller decides whether that matters.
func (d *Dispatcher) Publish(_ context.Context, env events.Envelope) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return pkgerrors.Wrap(pkgerrors.CodeNotificationDispatch, errDispatcherStopped, "enqueue "+env.Type.String())
	}
	select {
	case d.queue <- env:
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeNotificationDispatch, errQueueFull, "enqueue "+env.Type.String())
	}
}

// Run starts the workers and blocks until ctx is done. Queued envelopes are still delivered before
// it returns, each bounded by the send timeout.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return errors.New("dispatcher already running")
	}
	d.started = true
	d.mu.Unlock()

	d.logg.Info(d.logg.WithFields(ctx, map[string]any{
		"workers":  d.workers,
		"channels": d.channelNames(),
	}), "notification dispatcher started")

	deliverCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for env := range d.queue {
				_ = d.Deliver(deliverCtx, env)
			}
		}()
	}

	<-ctx.Done()
	d.mu.Lock()
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	wg.Wait()

	d.logg.Info(ctx, "notification dispatcher stopped")
	return nil
}

// Deliver sends env to every channel that accepts its type and returns the combined failures.
func (d *Dispatcher) Deliver(ctx context.Context, env events.Envelope) error {
	ctx = d.logg.WithFields(ctx, map[string]any{
		"event_id":   env.EventID.String(),
		"event_type": env.Type.String(),
		"group_id":   env.GroupID.String(),
		"alert_id":   env.AlertID.String(),
	})

	var errs error
	for _, ch := range d.channels {
		if !ch.Accepts(env.Type) {
			continue
		}
		errs = multierr.Append(errs, d.send(ctx, ch, env))
	}
	if errs != nil {
		d.logg.Error(d.logg.WithField(ctx, "error_code", string(pkgerrors.CodeNotificationDispatch)),
			"notification dispatch failed", errs)
	}
	return errs
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, env events.Envelope) error {
	name := string(ch.Name())
	consumer := "dispatch:" + name

	claimed := false
	if d.idem != nil {
		already, err := d.idem.CheckAndMarkProcessed(ctx, consumer, env.EventID)
		switch {
		case err != nil:
			// an unreachable marker store must not silence an emergency alert
			d.logg.Warn(d.logg.WithFields(ctx, map[string]any{"channel": name, "error": err.Error()}),
				"idempotency check failed, sending without marker")
		case already:
			d.metrics.ObserveDispatch(name, metrics.DispatchSkipped, 0)
			d.logg.Debug(d.logg.WithField(ctx, "channel", name), "event already delivered")
			return nil
		default:
			claimed = true
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	start := time.Now()
	err := ch.Send(sendCtx, env)
	cancel()
	elapsed := time.Since(start)

	if err != nil {
		if claimed {
			if releaseErr := d.idem.Release(ctx, consumer, env.EventID); releaseErr != nil {
				err = multierr.Append(err, fmt.Errorf("release marker: %w", releaseErr))
			}
		}
		d.metrics.ObserveDispatch(name, metrics.DispatchFailed, elapsed)
		return fmt.Errorf("%s: %w", name, err)
	}
	d.metrics.ObserveDispatch(name, metrics.DispatchSent, elapsed)
	return nil
}

func (d *Dispatcher) channelNames() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, string(ch.Name()))
	}
	return names
}
