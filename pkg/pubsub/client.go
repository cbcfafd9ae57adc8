// Package pubsub wraps the Pub/Sub v2 client used to carry alert lifecycle envelopes from the API to
// the notification worker.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aresconnect/ares-connect-backend/pkg/config"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

type kind string

const (
	kindTopic        kind = "topics"
	kindSubscription kind = "subscriptions"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNothingConfigured = errors.New("pubsub notification topic or subscription is required")
	errClosed            = errors.New("pubsub client not initialized")
)

type Client struct {
	raw     *pubsub.Client
	project string
	topic   string
	sub     string
}

// NewClient dials Pub/Sub for gcp.ProjectID and fails unless every configured resource already exists.
// Topics and subscriptions are provisioned out of band.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}

	c := &Client{
		project: project,
		topic:   strings.TrimSpace(cfg.NotificationTopic),
		sub:     strings.TrimSpace(cfg.NotificationSubscription),
	}
	if c.topic == "" && c.sub == "" {
		return nil, errNothingConfigured
	}

	raw, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c.raw = raw

	if err := c.verify(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"project":      project,
			"topic":        c.topic,
			"subscription": c.sub,
		}), "pubsub ready")
	}
	return c, nil
}

// verify looks up every configured resource through the admin clients.
func (c *Client) verify(ctx context.Context) error {
	checks := []struct {
		kind kind
		name string
		get  func(context.Context, string) error
	}{
		{kindTopic, c.topic, func(ctx context.Context, full string) error {
			_, err := c.raw.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: full})
			return err
		}},
		{kindSubscription, c.sub, func(ctx context.Context, full string) error {
			_, err := c.raw.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: full})
			return err
		}},
	}

	for _, check := range checks {
		if check.name == "" {
			continue
		}
		err := check.get(ctx, c.resource(check.kind, check.name))
		switch {
		case err == nil:
		case status.Code(err) == codes.NotFound:
			return fmt.Errorf("pubsub %s %q does not exist", strings.TrimSuffix(string(check.kind), "s"), check.name)
		default:
			return fmt.Errorf("looking up pubsub %s %q: %w", check.kind, check.name, err)
		}
	}
	return nil
}

// Publisher returns a handle for a topic ID or full resource name, or nil when it cannot resolve one.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.raw == nil {
		return nil
	}
	if full := c.resource(kindTopic, name); full != "" {
		return c.raw.Publisher(full)
	}
	return nil
}

// Subscription returns a handle for a subscription ID or full resource name, or nil when it cannot resolve one.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if c == nil || c.raw == nil {
		return nil
	}
	if full := c.resource(kindSubscription, name); full != "" {
		return c.raw.Subscriber(full)
	}
	return nil
}

func (c *Client) NotificationPublisher() *pubsub.Publisher {
	if c == nil {
		return nil
	}
	return c.Publisher(c.topic)
}

func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	if c == nil {
		return nil
	}
	return c.Subscription(c.sub)
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return errClosed
	}
	return c.verify(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// resource expands a short ID to projects/<project>/<kind>/<id>. Names already qualified for k pass through.
func (c *Client) resource(k kind, name string) string {
	if c == nil {
		return ""
	}
	id := strings.TrimSpace(name)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, "projects/") && strings.Contains(id, "/"+string(k)+"/") {
		return id
	}
	if c.project == "" {
		return ""
	}
	return "projects/" + c.project + "/" + string(k) + "/" + id
}
