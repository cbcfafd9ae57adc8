package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aresconnect/ares-connect-backend/pkg/config"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

const defaultFlushTimeout = 5 * time.Second

type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	IsConnected() bool
	Drain() error
}

// Client publishes alert envelopes to a NATS subject tree.
type Client struct {
	conn    conn
	subject string
}

// New dials NATS with unlimited reconnects and returns a publisher rooted at cfg.Subject.
func New(ctx context.Context, cfg config.NATSConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("nats url is required")
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if logg != nil && err != nil {
				logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "nats disconnected")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "nats_subject", cfg.Subject), "nats connection established")
	}
	return &Client{conn: nc, subject: cfg.Subject}, nil
}

// SubjectFor scopes the base subject to a group, e.g. ares.alerts.<groupID>.
func (c *Client) SubjectFor(groupID string) string {
	base := strings.Trim(strings.TrimSpace(c.subject), ".")
	if groupID == "" {
		return base
	}
	return base + "." + groupID
}

// Publish sends data and waits for the server to acknowledge the flush.
func (c *Client) Publish(ctx context.Context, subject string, data []byte) error {
	if c == nil || c.conn == nil {
		return errors.New("nats client not initialized")
	}
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	// FlushWithContext refuses contexts without a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultFlushTimeout)
		defer cancel()
	}
	return c.conn.FlushWithContext(ctx)
}

// Ping reports whether the connection is currently up.
func (c *Client) Ping(context.Context) error {
	if c == nil || c.conn == nil {
		return errors.New("nats client not initialized")
	}
	if !c.conn.IsConnected() {
		return errors.New("nats not connected")
	}
	return nil
}

// Close drains pending publishes before closing.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Drain()
}
