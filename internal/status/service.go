package status

import (
	"context"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
)

// AlertLister is the slice of the alert service the resolver needs.
type AlertLister interface {
	List(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error)
}

type Service interface {
	GroupStatus(ctx context.Context, groupID uuid.UUID) (Status, error)
}

type service struct {
	alerts AlertLister
}

func NewService(alerts AlertLister) (Service, error) {
	if alerts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alert lister required")
	}
	return &service{alerts: alerts}, nil
}

func (s *service) GroupStatus(ctx context.Context, groupID uuid.UUID) (Status, error) {
	alerts, err := s.alerts.List(ctx, groupID)
	if err != nil {
		return Status{}, err
	}
	return Resolve(alerts), nil
}
