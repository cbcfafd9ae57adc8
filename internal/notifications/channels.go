package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	"github.com/aresconnect/ares-connect-backend/pkg/events"
)

// Channel is one delivery sink for alert lifecycle events.
type Channel interface {
	Name() enums.NotificationChannel
	Accepts(eventType enums.AlertEventType) bool
	Send(ctx context.Context, env events.Envelope) error
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// PubSubChannel publishes every envelope to the notification topic for the feed worker and any
// other subscriber.
type PubSubChannel struct {
	pub publisher
}

func NewPubSubChannel(p *gcppubsub.Publisher) (*PubSubChannel, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return &PubSubChannel{pub: &gcpPublisher{Publisher: p}}, nil
}

func (c *PubSubChannel) Name() enums.NotificationChannel { return enums.NotificationChannelPubSub }

func (c *PubSubChannel) Accepts(enums.AlertEventType) bool { return true }

func (c *PubSubChannel) Send(ctx context.Context, env events.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	msg := &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_id":    env.EventID.String(),
			"event_type":  env.Type.String(),
			"group_id":    env.GroupID.String(),
			"alert_id":    env.AlertID.String(),
			"occurred_at": env.OccurredAt.Format(time.RFC3339Nano),
		},
	}
	result := c.pub.Publish(ctx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", env.Type, err)
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}

type natsPublisher interface {
	SubjectFor(groupID string) string
	Publish(ctx context.Context, subject string, data []byte) error
}

// NATSChannel mirrors envelopes onto <subject>.<groupID> for radio gateways and other listeners.
type NATSChannel struct {
	client natsPublisher
}

func NewNATSChannel(client natsPublisher) (*NATSChannel, error) {
	if client == nil {
		return nil, errors.New("nats client required")
	}
	return &NATSChannel{client: client}, nil
}

func (c *NATSChannel) Name() enums.NotificationChannel { return enums.NotificationChannelNATS }

func (c *NATSChannel) Accepts(enums.AlertEventType) bool { return true }

func (c *NATSChannel) Send(ctx context.Context, env events.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, c.client.SubjectFor(env.GroupID.String()), data)
}

// InboxChannel writes the group feed row in-process. It is used when no Pub/Sub worker runs.
type InboxChannel struct {
	repo Repository
}

func NewInboxChannel(repo Repository) (*InboxChannel, error) {
	if repo == nil {
		return nil, errors.New("notifications repository required")
	}
	return &InboxChannel{repo: repo}, nil
}

func (c *InboxChannel) Name() enums.NotificationChannel { return enums.NotificationChannelInbox }

func (c *InboxChannel) Accepts(eventType enums.AlertEventType) bool {
	return eventType == enums.AlertEventCreated
}

func (c *InboxChannel) Send(ctx context.Context, env events.Envelope) error {
	notification, err := NotificationFromEnvelope(env)
	if err != nil {
		return err
	}
	_, err = c.repo.Create(ctx, notification)
	return err
}

// NotificationFromEnvelope builds the feed row for an alert_created envelope.
func NotificationFromEnvelope(env events.Envelope) (*models.Notification, error) {
	decoded, err := events.DefaultRegistry().Decode(env)
	if err != nil {
		return nil, err
	}
	created, ok := decoded.(events.AlertCreatedEvent)
	if !ok {
		return nil, fmt.Errorf("expected %s payload, got %s", enums.AlertEventCreated, env.Type)
	}
	if created.GroupID == uuid.Nil || created.AlertID == uuid.Nil {
		return nil, errors.New("alert_created payload missing group or alert id")
	}
	createdAt := created.CreatedAt
	if createdAt.IsZero() {
		createdAt = env.OccurredAt
	}
	return &models.Notification{
		ID:        env.EventID,
		GroupID:   created.GroupID,
		AlertID:   created.AlertID,
		Level:     created.Level,
		Title:     created.Title,
		Body:      created.Body,
		CreatedAt: createdAt.UTC(),
	}, nil
}
