package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
)

// keyStore is an in-memory IdempotencyStore that remembers the TTL of every write.
type keyStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newKeyStore() *keyStore {
	return &keyStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (k *keyStore) put(key string, value any, ttl time.Duration) {
	k.values[key] = fmt.Sprint(value)
	k.ttls[key] = ttl
}

func (k *keyStore) Get(_ context.Context, key string) (string, error) {
	v, ok := k.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (k *keyStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, taken := k.values[key]; taken {
		return false, nil
	}
	k.put(key, value, ttl)
	return true, nil
}

func (k *keyStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	k.put(key, value, ttl)
	return nil
}

func (k *keyStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (k *keyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(k.values, key)
		delete(k.ttls, key)
	}
	return nil
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	ctx = WithIdentity(ctx, Identity{UserID: uuid.New(), GroupID: uuid.New(), Name: "Ada"})
	return req.WithContext(ctx)
}

const (
	createAlertPattern = "/api/v1/groups/{groupId}/alerts"
	acknowledgePattern = "/api/v1/alerts/{alertId}/acknowledgments"
)

func TestRouteRuleSelection(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		pattern  string
		want     time.Duration
		optional bool
		ok       bool
	}{
		{"create alert", http.MethodPost, createAlertPattern, criticalIdempotencyTTL, false, true},
		{"create alert concrete path", http.MethodPost, "/api/v1/groups/0b7c/alerts", criticalIdempotencyTTL, false, true},
		{"acknowledge", http.MethodPost, acknowledgePattern, defaultIdempotencyTTL, true, true},
		{"list alerts", http.MethodGet, createAlertPattern, 0, false, false},
		{"patch alert", http.MethodPatch, "/api/v1/alerts/{alertId}", 0, false, false},
		{"stats", http.MethodPost, "/api/v1/alerts/{alertId}/stats", 0, false, false},
	}

	for _, tt := range tests {
		rule, ok := routeRule(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if !ok {
			continue
		}
		if rule.ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, rule.ttl)
		}
		if rule.optional != tt.optional {
			t.Fatalf("%s: expected optional=%v got %v", tt.name, tt.optional, rule.optional)
		}
	}
}

func TestRoutePatternIgnoresParentWildcard(t *testing.T) {
	req := requestWithPattern(http.MethodPost, "/api/v1/alerts/abc/acknowledgments", "/api/*", nil)
	if got := routePattern(req); got != "/api/v1/alerts/abc/acknowledgments" {
		t.Fatalf("expected url path fallback, got %s", got)
	}
}

func TestIdempotencyMiddlewareRequiresHeaderForAlertCreation(t *testing.T) {
	store := newKeyStore()
	mw := Idempotency(store, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/groups/g/alerts", createAlertPattern, strings.NewReader(`{"title":"Net"}`))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyMiddlewareOptionalForAcknowledgments(t *testing.T) {
	store := newKeyStore()
	mw := Idempotency(store, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/alerts/a/acknowledgments", acknowledgePattern, nil)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated || calls != 1 {
		t.Fatalf("expected pass-through, got status %d calls %d", resp.Code, calls)
	}
	if len(store.values) != 0 {
		t.Fatalf("nothing should be recorded without a key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newKeyStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/groups/g/alerts", createAlertPattern, strings.NewReader(`{"title":"Net"}`))
	req.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", resp.Code)
	}

	// Same identity, so the replay lands on the same scope.
	replay := httptest.NewRequest(http.MethodPost, "/api/v1/groups/g/alerts", strings.NewReader(`{"title":"Net"}`)).WithContext(req.Context())
	replay.Header.Set("Idempotency-Key", "abc")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if rec.Header().Get(idempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay marker header")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareDoesNotStoreServerErrors(t *testing.T) {
	store := newKeyStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/groups/g/alerts", createAlertPattern, strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "retry-me")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	if len(store.values) != 0 {
		t.Fatalf("5xx responses must stay retryable, stored %v", store.values)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newKeyStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/groups/g/alerts", createAlertPattern, strings.NewReader(`{"title":"Net"}`))
	req.Header.Set("Idempotency-Key", "xyz")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	replay := httptest.NewRequest(http.MethodPost, "/api/v1/groups/g/alerts", strings.NewReader(`{"title":"Other"}`)).WithContext(req.Context())
	replay.Header.Set("Idempotency-Key", "xyz")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencyMiddlewareRejectsInFlightDuplicate(t *testing.T) {
	store := newKeyStore()
	mw := Idempotency(store, nil)

	var inner *httptest.ResponseRecorder
	var outer *http.Request
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A duplicate arriving while the first request is still being handled.
		dup := httptest.NewRequest(http.MethodPost, "/api/v1/groups/g/alerts", strings.NewReader(`{"title":"Net"}`)).WithContext(outer.Context())
		dup.Header.Set("Idempotency-Key", "busy")
		inner = httptest.NewRecorder()
		mw(http.NotFoundHandler()).ServeHTTP(inner, dup)
		w.WriteHeader(http.StatusCreated)
	})

	outer = requestWithPattern(http.MethodPost, "/api/v1/groups/g/alerts", createAlertPattern, strings.NewReader(`{"title":"Net"}`))
	outer.Header.Set("Idempotency-Key", "busy")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, outer)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected original request to succeed, got %d", resp.Code)
	}
	if inner == nil || inner.Code != http.StatusConflict {
		t.Fatalf("expected in-flight duplicate to get 409, got %+v", inner)
	}
}

func TestIdempotencyMiddlewareKeepsAlertCreationsLonger(t *testing.T) {
	store := newKeyStore()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	create := requestWithPattern(http.MethodPost, "/api/v1/groups/g/alerts", createAlertPattern, strings.NewReader(`{"title":"Net"}`))
	create.Header.Set("Idempotency-Key", "create-1")
	Idempotency(store, nil)(handler).ServeHTTP(httptest.NewRecorder(), create)

	ack := requestWithPattern(http.MethodPost, "/api/v1/alerts/a/acknowledgments", acknowledgePattern, nil)
	ack.Header.Set("Idempotency-Key", "ack-1")
	Idempotency(store, nil)(handler).ServeHTTP(httptest.NewRecorder(), ack)

	var sawCritical, sawDefault bool
	for _, ttl := range store.ttls {
		switch ttl {
		case criticalIdempotencyTTL:
			sawCritical = true
		case defaultIdempotencyTTL:
			sawDefault = true
		case pendingClaimTTL:
			t.Fatal("completed requests must not keep the pending claim ttl")
		}
	}
	if len(store.ttls) != 2 || !sawCritical || !sawDefault {
		t.Fatalf("expected one record per rule ttl, got %v", store.ttls)
	}
}
