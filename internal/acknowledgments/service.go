package acknowledgments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/internal/alerts"
	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/events"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
	"github.com/aresconnect/ares-connect-backend/pkg/metrics"
)

// Service records and reports acknowledgments.
type Service interface {
	Acknowledge(ctx context.Context, input AcknowledgeInput) (*Result, error)
	List(ctx context.Context, alertID uuid.UUID) ([]models.AlertAcknowledgment, error)
	HasAcknowledged(ctx context.Context, alertID, userID uuid.UUID) (bool, error)
	// Stats computes the response rate against a member count supplied by the roster.
	Stats(ctx context.Context, alertID uuid.UUID, groupMemberCount int) (Stats, error)
}

// AcknowledgeInput snapshots the acknowledging member. A zero Timestamp means now.
type AcknowledgeInput struct {
	AlertID      uuid.UUID
	UserID       uuid.UUID
	UserName     string
	UserCallsign string
	Timestamp    time.Time
}

// Result distinguishes a recorded acknowledgment from a repeat of an earlier one.
type Result struct {
	Applied        bool                       `json:"applied"`
	Acknowledgment models.AlertAcknowledgment `json:"acknowledgment"`
}

type ServiceParams struct {
	Repo      Repository
	Publisher alerts.EventPublisher
	Logger    *logger.Logger
	Metrics   *metrics.AlertMetrics
	Now       func() time.Time
}

type service struct {
	repo      Repository
	publisher alerts.EventPublisher
	logg      *logger.Logger
	metrics   *metrics.AlertMetrics
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "acknowledgment repository required")
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

func (s *service) Acknowledge(ctx context.Context, input AcknowledgeInput) (*Result, error) {
	name := strings.TrimSpace(input.UserName)
	switch {
	case input.AlertID == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	case input.UserID == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	case name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user name required")
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	appended, err := s.repo.Append(ctx, models.AlertAcknowledgment{
		ID:             uuid.New(),
		AlertID:        input.AlertID,
		UserID:         input.UserID,
		UserName:       name,
		UserCallsign:   strings.TrimSpace(input.UserCallsign),
		AcknowledgedAt: ts.UTC(),
	})
	if err != nil {
		return nil, mapRepoError(err, "record acknowledgment")
	}

	s.metrics.IncAcknowledgment(appended.Applied)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"alert_id": input.AlertID.String(),
		"user_id":  input.UserID.String(),
		"applied":  appended.Applied,
	})
	if !appended.Applied {
		s.logg.Debug(ctx, "duplicate acknowledgment ignored")
		return &Result{Applied: false, Acknowledgment: appended.Acknowledgment}, nil
	}
	s.logg.Info(ctx, "alert acknowledged")

	s.emit(ctx, appended)
	return &Result{Applied: true, Acknowledgment: appended.Acknowledgment}, nil
}

func (s *service) emit(ctx context.Context, appended AppendResult) {
	if s.publisher == nil {
		return
	}
	ack := appended.Acknowledgment
	env, err := events.NewEnvelope(enums.AlertEventAcknowledged, appended.GroupID, ack.AlertID,
		&events.ActorRef{UserID: ack.UserID, Name: ack.UserName},
		events.AlertAcknowledgedEvent{
			AlertID:        ack.AlertID,
			UserID:         ack.UserID,
			UserName:       ack.UserName,
			UserCallsign:   ack.UserCallsign,
			AcknowledgedAt: ack.AcknowledgedAt,
		})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "error_code", string(pkgerrors.CodeNotificationDispatch)),
			"acknowledgment event dispatch failed",
			pkgerrors.Wrap(pkgerrors.CodeNotificationDispatch, err, "dispatch alert_acknowledged"))
		s.metrics.ObserveDispatch("queue", metrics.DispatchDropped, 0)
	}
}

func (s *service) List(ctx context.Context, alertID uuid.UUID) ([]models.AlertAcknowledgment, error) {
	if alertID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}
	acks, err := s.repo.ListForAlert(ctx, alertID)
	if err != nil {
		return nil, mapRepoError(err, "list acknowledgments")
	}
	return acks, nil
}

func (s *service) HasAcknowledged(ctx context.Context, alertID, userID uuid.UUID) (bool, error) {
	if alertID == uuid.Nil || userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "alert id and user id required")
	}
	ok, err := s.repo.Exists(ctx, alertID, userID)
	if err != nil {
		return false, mapRepoError(err, "check acknowledgment")
	}
	return ok, nil
}

func (s *service) Stats(ctx context.Context, alertID uuid.UUID, groupMemberCount int) (Stats, error) {
	if alertID == uuid.Nil {
		return Stats{}, pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}
	if groupMemberCount < 0 {
		return Stats{}, pkgerrors.New(pkgerrors.CodeValidation, "group member count cannot be negative")
	}
	total, err := s.repo.Count(ctx, alertID)
	if err != nil {
		return Stats{}, mapRepoError(err, "count acknowledgments")
	}
	return ComputeStats(total, groupMemberCount), nil
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
