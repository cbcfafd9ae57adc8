package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aresconnect/ares-connect-backend/api/responses"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

// StreamServer attaches an upgraded connection to a group's live event stream.
type StreamServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, upgrader websocket.Upgrader, groupID, userID uuid.UUID) error
}

// GroupStream upgrades the request to a websocket carrying the group's alert events.
func GroupStream(hub StreamServer, upgrader websocket.Upgrader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		groupID, err := uuidParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// A failed handshake has already been answered by the upgrader.
		if err := hub.ServeWS(w, r, upgrader, groupID, identity.UserID); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "websocket upgrade failed")
		}
	}
}
