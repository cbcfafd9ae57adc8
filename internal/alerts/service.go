package alerts

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/events"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
	"github.com/aresconnect/ares-connect-backend/pkg/metrics"
)

// EventPublisher hands lifecycle events to the notification dispatcher. Implementations must not
// block on delivery.
type EventPublisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

// Service exposes the alert lifecycle. Callers are responsible for the admin-capable check on
// Create, Update and Delete.
type Service interface {
	List(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error)
	Active(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error)
	Get(ctx context.Context, alertID uuid.UUID) (*models.Alert, error)
	Create(ctx context.Context, input CreateInput) (*models.Alert, error)
	Update(ctx context.Context, alertID uuid.UUID, input UpdateInput) (*models.Alert, error)
	Delete(ctx context.Context, alertID uuid.UUID) error
}

// CreateInput is the admin-supplied alert body.
type CreateInput struct {
	GroupID     uuid.UUID
	CreatedBy   uuid.UUID
	CreatorName string
	Title       string
	Message     string
	Level       enums.AlertLevel
}

// UpdateInput holds a partial edit; nil fields are left untouched.
type UpdateInput struct {
	Title   *string
	Message *string
	Level   *enums.AlertLevel
}

type ServiceParams struct {
	Repo      Repository
	Publisher EventPublisher
	Logger    *logger.Logger
	Metrics   *metrics.AlertMetrics
	Now       func() time.Time
}

type service struct {
	repo      Repository
	publisher EventPublisher
	logg      *logger.Logger
	metrics   *metrics.AlertMetrics
	now       func() time.Time
}

// NewService wires the alert service. Publisher may be nil, in which case no events are emitted.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alert repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repo,
		publisher: params.Publisher,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

func (s *service) List(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	alerts, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return alerts, nil
}

// Active returns the group's alerts newest first.
func (s *service) Active(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error) {
	alerts, err := s.List(ctx, groupID)
	if err != nil {
		return nil, err
	}
	sorted := make([]models.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted, nil
}

func (s *service) Get(ctx context.Context, alertID uuid.UUID) (*models.Alert, error) {
	if alertID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}
	alert, err := s.repo.FindByID(ctx, alertID)
	if err != nil {
		return nil, mapRepoError(err, "load alert")
	}
	return alert, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Alert, error) {
	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)

	switch {
	case title == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	case message == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	case input.GroupID == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	case input.CreatedBy == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "created by is required")
	case !input.Level.IsValid():
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid alert level %q", input.Level)
	}

	now := s.now()
	alert := &models.Alert{
		ID:              uuid.New(),
		GroupID:         input.GroupID,
		Title:           title,
		Message:         message,
		Level:           input.Level,
		CreatedBy:       input.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
		Acknowledgments: []models.AlertAcknowledgment{},
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create alert")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"alert_id": alert.ID.String(),
		"group_id": alert.GroupID.String(),
		"level":    alert.Level.String(),
	})
	s.logg.Info(ctx, "alert created")
	s.metrics.IncAlertCreated(alert.Level.String())

	s.emit(ctx, enums.AlertEventCreated, alert.GroupID, alert.ID,
		&events.ActorRef{UserID: input.CreatedBy, Name: strings.TrimSpace(input.CreatorName)},
		events.AlertCreatedEvent{
			GroupID:   alert.GroupID,
			AlertID:   alert.ID,
			Title:     alert.Title,
			Body:      alert.Message,
			Level:     alert.Level,
			CreatedBy: alert.CreatedBy,
			CreatedAt: alert.CreatedAt,
		})

	return alert, nil
}

func (s *service) Update(ctx context.Context, alertID uuid.UUID, input UpdateInput) (*models.Alert, error) {
	if alertID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}

	changes := Changes{Level: input.Level}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		changes.Title = &title
	}
	if input.Message != nil {
		message := strings.TrimSpace(*input.Message)
		if message == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "message cannot be empty")
		}
		changes.Message = &message
	}
	if input.Level != nil && !input.Level.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid alert level %q", *input.Level)
	}
	if changes.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one of title, message or level is required")
	}

	alert, err := s.repo.Update(ctx, alertID, changes, s.now())
	if err != nil {
		return nil, mapRepoError(err, "update alert")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"alert_id": alert.ID.String(),
		"group_id": alert.GroupID.String(),
	})
	s.logg.Info(ctx, "alert updated")

	s.emit(ctx, enums.AlertEventUpdated, alert.GroupID, alert.ID, nil, events.AlertUpdatedEvent{
		AlertID:   alert.ID,
		Title:     alert.Title,
		Message:   alert.Message,
		Level:     alert.Level,
		UpdatedAt: alert.UpdatedAt,
	})
	return alert, nil
}

// Delete removes the alert and its acknowledgments. Deleting an unknown or already deleted alert
// is a not-found error.
func (s *service) Delete(ctx context.Context, alertID uuid.UUID) error {
	if alertID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}
	alert, err := s.repo.FindByID(ctx, alertID)
	if err != nil {
		return mapRepoError(err, "load alert")
	}
	if err := s.repo.Delete(ctx, alertID); err != nil {
		return mapRepoError(err, "delete alert")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"alert_id":        alertID.String(),
		"group_id":        alert.GroupID.String(),
		"acknowledgments": len(alert.Acknowledgments),
	})
	s.logg.Info(ctx, "alert deleted")
	s.metrics.IncAlertDeleted()

	s.emit(ctx, enums.AlertEventDeleted, alert.GroupID, alertID, nil, events.AlertDeletedEvent{AlertID: alertID})
	return nil
}

// emit never fails the caller; dispatch problems are logged and counted.
func (s *service) emit(ctx context.Context, eventType enums.AlertEventType, groupID, alertID uuid.UUID, actor *events.ActorRef, payload any) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, groupID, alertID, actor, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err == nil {
		return
	}
	dispatchErr := pkgerrors.Wrap(pkgerrors.CodeNotificationDispatch, err, "dispatch "+eventType.String())
	s.logg.Error(s.logg.WithFields(ctx, map[string]any{
		"error_code": string(pkgerrors.CodeNotificationDispatch),
		"event_type": eventType.String(),
	}), "notification dispatch failed", dispatchErr)
	s.metrics.ObserveDispatch("queue", metrics.DispatchDropped, 0)
}

func mapRepoError(err error, action string) error {
	if repo.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "alert not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
