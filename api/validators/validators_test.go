package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
)

type alertBody struct {
	Title *string `json:"title" validate:"omitempty,notblank,max=200"`
	Level string  `json:"level" validate:"required,alert_level"`
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Net","level":"drill"}`))
	var body alertBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Title == nil || *body.Title != "Net" || body.Level != "drill" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownLevel(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"level":"PANIC"}`))
	var body alertBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["level"] == "" {
		t.Fatalf("expected level detail, got %#v", typed.Details())
	}
}

func TestDecodeJSONBodyRejectsBlankTitle(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"   ","level":"INFO"}`))
	var body alertBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected validation error")
	}
	if details := typed.Details().(map[string]string); details["title"] != "is required" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"level":"INFO","priority":1}`))
	var body alertBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25", nil)
	got, err := ParseQueryInt(req, "limit", 50, 1, 100)
	if err != nil || got != 25 {
		t.Fatalf("expected 25, got %d err %v", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got, _ := ParseQueryInt(req, "limit", 50, 1, 100); got != 50 {
		t.Fatalf("expected default, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	if _, err := ParseQueryInt(req, "limit", 50, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected range error, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=ten", nil)
	if _, err := ParseQueryInt(req, "limit", 50, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected numeric error, got %v", err)
	}
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?active=true", nil)
	if got, err := ParseQueryBool(req, "active"); err != nil || !got {
		t.Fatalf("expected true, got %v err %v", got, err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got, err := ParseQueryBool(req, "active"); err != nil || got {
		t.Fatalf("expected false default, got %v err %v", got, err)
	}
	req = httptest.NewRequest(http.MethodGet, "/?active=maybe", nil)
	if _, err := ParseQueryBool(req, "active"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsMalformedShapes(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"trailing": `{"level":"INFO"} {"level":"DRILL"}`,
		"type":     `{"level":5}`,
		"oversize": `{"level":"INFO","title":"` + strings.Repeat("x", MaxBodyBytes) + `"}`,
	}
	for name, payload := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		var body alertBody
		if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestDecodeJSONBodyReportsTypeMismatchField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"level":5}`))
	var body alertBody
	typed := pkgerrors.As(DecodeJSONBody(req, &body))
	if typed == nil {
		t.Fatal("expected typed error")
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["level"] != "must be a string" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}
