package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/api/responses"
	"github.com/aresconnect/ares-connect-backend/internal/acknowledgments"
	"github.com/aresconnect/ares-connect-backend/internal/alerts"
	"github.com/aresconnect/ares-connect-backend/internal/roster"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

type acknowledgmentStatusResponse struct {
	AlertID      uuid.UUID `json:"alertId"`
	Acknowledged bool      `json:"acknowledged"`
}

type alertStatsResponse struct {
	AlertID     uuid.UUID `json:"alertId"`
	MemberCount int       `json:"memberCount"`
	acknowledgments.Stats
}

// Acknowledge records the caller's acknowledgment using the name and callsign from their token.
// A first acknowledgment answers 201, a repeat answers 200 with the original record.
func Acknowledge(alertSvc alerts.Service, ackSvc acknowledgments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alertID, err := uuidParam(r, "alertId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := alertInGroup(r.Context(), alertSvc, alertID, identity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := ackSvc.Acknowledge(r.Context(), acknowledgments.AcknowledgeInput{
			AlertID:      alertID,
			UserID:       identity.UserID,
			UserName:     identity.Name,
			UserCallsign: identity.Callsign,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Applied {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// ListAcknowledgments returns the alert's ledger, oldest first.
func ListAcknowledgments(alertSvc alerts.Service, ackSvc acknowledgments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alertID, err := uuidParam(r, "alertId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := alertInGroup(r.Context(), alertSvc, alertID, identity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := ackSvc.List(r.Context(), alertID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MyAcknowledgment reports whether the caller has acknowledged the alert.
func MyAcknowledgment(alertSvc alerts.Service, ackSvc acknowledgments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alertID, err := uuidParam(r, "alertId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := alertInGroup(r.Context(), alertSvc, alertID, identity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		acked, err := ackSvc.HasAcknowledged(r.Context(), alertID, identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, acknowledgmentStatusResponse{AlertID: alertID, Acknowledged: acked})
	}
}

// AlertStats reports the response rate against the group's current roster.
func AlertStats(alertSvc alerts.Service, ackSvc acknowledgments.Service, members roster.MemberCounter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alertID, err := uuidParam(r, "alertId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alert, err := alertInGroup(r.Context(), alertSvc, alertID, identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := members.GroupMemberCount(r.Context(), alert.GroupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := ackSvc.Stats(r.Context(), alertID, count)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alertStatsResponse{AlertID: alertID, MemberCount: count, Stats: stats})
	}
}
