package controllers

import (
	"net/http"

	"github.com/aresconnect/ares-connect-backend/api/responses"
	"github.com/aresconnect/ares-connect-backend/internal/status"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

// GroupStatus returns the group's current operational status, recomputed on every call.
func GroupStatus(svc status.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := uuidParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		current, err := svc.GroupStatus(r.Context(), groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}
