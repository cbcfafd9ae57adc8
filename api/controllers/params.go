package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/api/middleware"
	"github.com/aresconnect/ares-connect-backend/internal/alerts"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

func requireIdentity(r *http.Request) (middleware.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return middleware.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return identity, nil
}

// alertInGroup loads an alert and hides it when it belongs to another group.
func alertInGroup(ctx context.Context, svc alerts.Service, alertID uuid.UUID, identity middleware.Identity) (*models.Alert, error) {
	alert, err := svc.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.GroupID != identity.GroupID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
	}
	return alert, nil
}
