package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/api/middleware"
	"github.com/aresconnect/ares-connect-backend/internal/acknowledgments"
	"github.com/aresconnect/ares-connect-backend/internal/alerts"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func memberIdentity(groupID uuid.UUID, roles ...enums.MemberRole) middleware.Identity {
	return middleware.Identity{
		UserID:   uuid.New(),
		GroupID:  groupID,
		Name:     "Grace Hopper",
		Callsign: "W1GH",
		Roles:    roles,
	}
}

func newRequest(method, target, body string, params map[string]string, identity *middleware.Identity) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if identity != nil {
		ctx = middleware.WithIdentity(ctx, *identity)
	}
	return req.WithContext(ctx)
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, resp.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

type stubAlertService struct {
	listFn   func(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error)
	activeFn func(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error)
	getFn    func(ctx context.Context, alertID uuid.UUID) (*models.Alert, error)
	createFn func(ctx context.Context, input alerts.CreateInput) (*models.Alert, error)
	updateFn func(ctx context.Context, alertID uuid.UUID, input alerts.UpdateInput) (*models.Alert, error)
	deleteFn func(ctx context.Context, alertID uuid.UUID) error
}

func (s *stubAlertService) List(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error) {
	if s.listFn != nil {
		return s.listFn(ctx, groupID)
	}
	return []models.Alert{}, nil
}

func (s *stubAlertService) Active(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error) {
	if s.activeFn != nil {
		return s.activeFn(ctx, groupID)
	}
	return []models.Alert{}, nil
}

func (s *stubAlertService) Get(ctx context.Context, alertID uuid.UUID) (*models.Alert, error) {
	if s.getFn != nil {
		return s.getFn(ctx, alertID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
}

func (s *stubAlertService) Create(ctx context.Context, input alerts.CreateInput) (*models.Alert, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubAlertService) Update(ctx context.Context, alertID uuid.UUID, input alerts.UpdateInput) (*models.Alert, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, alertID, input)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubAlertService) Delete(ctx context.Context, alertID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, alertID)
	}
	return nil
}

// alertsIn serves Get for a fixed set of alerts.
func alertsIn(list ...models.Alert) *stubAlertService {
	return &stubAlertService{
		getFn: func(_ context.Context, alertID uuid.UUID) (*models.Alert, error) {
			for i := range list {
				if list[i].ID == alertID {
					alert := list[i]
					return &alert, nil
				}
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		},
	}
}

type stubAckService struct {
	acknowledgeFn func(ctx context.Context, input acknowledgments.AcknowledgeInput) (*acknowledgments.Result, error)
	listFn        func(ctx context.Context, alertID uuid.UUID) ([]models.AlertAcknowledgment, error)
	hasFn         func(ctx context.Context, alertID, userID uuid.UUID) (bool, error)
	statsFn       func(ctx context.Context, alertID uuid.UUID, memberCount int) (acknowledgments.Stats, error)
}

func (s *stubAckService) Acknowledge(ctx context.Context, input acknowledgments.AcknowledgeInput) (*acknowledgments.Result, error) {
	if s.acknowledgeFn != nil {
		return s.acknowledgeFn(ctx, input)
	}
	return &acknowledgments.Result{Applied: true}, nil
}

func (s *stubAckService) List(ctx context.Context, alertID uuid.UUID) ([]models.AlertAcknowledgment, error) {
	if s.listFn != nil {
		return s.listFn(ctx, alertID)
	}
	return []models.AlertAcknowledgment{}, nil
}

func (s *stubAckService) HasAcknowledged(ctx context.Context, alertID, userID uuid.UUID) (bool, error) {
	if s.hasFn != nil {
		return s.hasFn(ctx, alertID, userID)
	}
	return false, nil
}

func (s *stubAckService) Stats(ctx context.Context, alertID uuid.UUID, memberCount int) (acknowledgments.Stats, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx, alertID, memberCount)
	}
	return acknowledgments.Stats{}, nil
}
