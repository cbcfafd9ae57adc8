package controllers

import (
	"net/http"
	"strings"

	"github.com/aresconnect/ares-connect-backend/api/responses"
	"github.com/aresconnect/ares-connect-backend/api/validators"
	"github.com/aresconnect/ares-connect-backend/internal/alerts"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

type createAlertRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Message string `json:"message" validate:"required,notblank,max=4000"`
	Level   string `json:"level" validate:"required,alert_level"`
}

type updateAlertRequest struct {
	Title   *string `json:"title" validate:"omitempty,notblank,max=200"`
	Message *string `json:"message" validate:"omitempty,notblank,max=4000"`
	Level   *string `json:"level" validate:"omitempty,alert_level"`
}

// ListAlerts returns the group's alerts; ?active=true orders them newest first.
func ListAlerts(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := uuidParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list []models.Alert
		if active {
			list, err = svc.Active(r.Context(), groupID)
		} else {
			list, err = svc.List(r.Context(), groupID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CreateAlert publishes a new alert to the caller's group.
func CreateAlert(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body createAlertRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		level, err := enums.ParseAlertLevel(body.Level)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid level"))
			return
		}

		alert, err := svc.Create(r.Context(), alerts.CreateInput{
			GroupID:     groupID,
			CreatedBy:   identity.UserID,
			CreatorName: identity.Name,
			Title:       body.Title,
			Message:     body.Message,
			Level:       level,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, alert)
	}
}

func GetAlert(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
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
		alert, err := alertInGroup(r.Context(), svc, alertID, identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alert)
	}
}

// UpdateAlert applies a partial edit; omitted fields keep their value.
func UpdateAlert(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body updateAlertRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := alerts.UpdateInput{Title: body.Title, Message: body.Message}
		if body.Level != nil {
			level, err := enums.ParseAlertLevel(strings.TrimSpace(*body.Level))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid level"))
				return
			}
			input.Level = &level
		}

		if _, err := alertInGroup(r.Context(), svc, alertID, identity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alert, err := svc.Update(r.Context(), alertID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alert)
	}
}

// DeleteAlert removes the alert and its acknowledgments.
func DeleteAlert(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
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
		if _, err := alertInGroup(r.Context(), svc, alertID, identity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), alertID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
