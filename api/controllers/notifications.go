package controllers

import (
	"net/http"
	"strings"

	"github.com/aresconnect/ares-connect-backend/api/responses"
	"github.com/aresconnect/ares-connect-backend/api/validators"
	"github.com/aresconnect/ares-connect-backend/internal/notifications"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
	"github.com/aresconnect/ares-connect-backend/pkg/pagination"
)

// ListNotifications returns the group's notification feed, newest first.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		groupID, err := uuidParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := notifications.ListParams{
			GroupID: groupID,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
