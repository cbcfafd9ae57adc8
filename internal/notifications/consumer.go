package notifications

import (
	"context"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	"github.com/aresconnect/ares-connect-backend/pkg/events"
	"github.com/aresconnect/ares-connect-backend/pkg/events/idempotency"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

// feedConsumer namespaces the delivery markers written by the feed worker.
const feedConsumer = "group-feed"

var (
	errSubscriptionRequired = errors.New("notification subscription required")
	errRepositoryRequired   = errors.New("notifications repository required")
	errManagerRequired      = errors.New("idempotency manager required")
	errLoggerRequired       = errors.New("logger required")
)

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// delivery is the part of a Pub/Sub message the consumer reads.
type delivery struct {
	id    string
	attrs map[string]string
	data  []byte
}

// Consumer drains the notification subscription into the group feed. Only alert_created envelopes
// produce rows; every other event type is acknowledged and dropped.
type Consumer struct {
	feed  Repository
	sub   receiver
	marks *idempotency.Manager
	logg  *logger.Logger
}

func NewConsumer(repo Repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, errSubscriptionRequired
	}
	return newConsumer(repo, subscription, manager, logg)
}

func newConsumer(repo Repository, sub receiver, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	switch {
	case repo == nil:
		return nil, errRepositoryRequired
	case manager == nil:
		return nil, errManagerRequired
	case logg == nil:
		return nil, errLoggerRequired
	}
	return &Consumer{feed: repo, sub: sub, marks: manager, logg: logg}, nil
}

// Run blocks until ctx is canceled. Messages whose handling fails transiently are nacked for redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	return c.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if err := c.handle(ctx, delivery{id: msg.ID, attrs: msg.Attributes, data: msg.Data}); err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// handle returns an error only when redelivery could succeed. Undecodable messages are logged and
// swallowed so they do not loop forever.
func (c *Consumer) handle(ctx context.Context, d delivery) error {
	eventType := d.attrs["event_type"]
	ctx = c.logg.WithFields(ctx, map[string]any{"message_id": d.id, "event_type": eventType})

	if eventType != enums.AlertEventCreated.String() {
		c.logg.Debug(ctx, "ignoring event type")
		return nil
	}

	env, err := events.ParseEnvelope(d.data)
	if err != nil {
		c.logg.Error(ctx, "dropping undecodable envelope", err)
		return nil
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"event_id":          env.EventID.String(),
		logger.FieldGroupID: env.GroupID.String(),
		logger.FieldAlertID: env.AlertID.String(),
	})

	row, err := NotificationFromEnvelope(env)
	if err != nil {
		c.logg.Error(ctx, "dropping envelope with bad payload", err)
		return nil
	}

	seen, err := c.marks.CheckAndMarkProcessed(ctx, feedConsumer, env.EventID)
	if err != nil {
		c.logg.Error(ctx, "delivery marker unavailable", err)
		return fmt.Errorf("marking %s: %w", env.EventID, err)
	}
	if seen {
		c.logg.Info(ctx, "duplicate delivery skipped")
		return nil
	}

	inserted, err := c.feed.Create(ctx, row)
	if err != nil {
		// drop the marker so the redelivery is not mistaken for a duplicate
		if relErr := c.marks.Release(ctx, feedConsumer, env.EventID); relErr != nil {
			c.logg.Warn(c.logg.WithField(ctx, "release_error", relErr.Error()), "delivery marker not released")
		}
		c.logg.Error(ctx, "feed write failed", err)
		return fmt.Errorf("writing feed row for %s: %w", env.AlertID, err)
	}

	if inserted {
		c.logg.Info(ctx, "feed row written")
	} else {
		c.logg.Info(ctx, "feed row already present")
	}
	return nil
}
