package nats

import (
	"context"
	"errors"
	"testing"
)

type fakeConn struct {
	published map[string][]byte
	flushed   int
	pubErr    error
	connected bool
	drained   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	if f.published == nil {
		f.published = map[string][]byte{}
	}
	f.published[subject] = data
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error {
	f.flushed++
	return nil
}

func (f *fakeConn) IsConnected() bool { return f.connected }

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublishFlushes(t *testing.T) {
	fc := &fakeConn{connected: true}
	client := &Client{conn: fc, subject: "ares.alerts"}

	subject := client.SubjectFor("group-1")
	if subject != "ares.alerts.group-1" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if err := client.Publish(context.Background(), subject, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if string(fc.published[subject]) != `{"ok":true}` {
		t.Fatalf("payload not published: %+v", fc.published)
	}
	if fc.flushed != 1 {
		t.Fatalf("expected one flush, got %d", fc.flushed)
	}
	if err := client.Close(); err != nil || !fc.drained {
		t.Fatalf("expected drain on close, err=%v", err)
	}
}

func TestPublishError(t *testing.T) {
	client := &Client{conn: &fakeConn{pubErr: errors.New("slow consumer")}, subject: "ares.alerts"}
	if err := client.Publish(context.Background(), "ares.alerts", nil); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestPing(t *testing.T) {
	if err := (&Client{conn: &fakeConn{connected: false}}).Ping(context.Background()); err == nil {
		t.Fatal("expected disconnected error")
	}
	if err := (&Client{conn: &fakeConn{connected: true}}).Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	var nilClient *Client
	if err := nilClient.Ping(context.Background()); err == nil {
		t.Fatal("expected nil client error")
	}
}

func TestSubjectForTrimsDots(t *testing.T) {
	client := &Client{subject: " ares.alerts. "}
	if got := client.SubjectFor(""); got != "ares.alerts" {
		t.Fatalf("unexpected base subject %q", got)
	}
}
