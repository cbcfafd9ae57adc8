package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/pagination"
)

// Service reads the group notification feed.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ListParams selects one page. Limit is clamped to [1, pagination.MaxLimit]; Cursor comes from a
// previous ListResult.
type ListParams struct {
	GroupID uuid.UUID
	Limit   int
	Cursor  string
}

type ListResult struct {
	Items      []models.Notification `json:"items"`
	NextCursor string                `json:"nextCursor,omitempty"`
	HasMore    bool                  `json:"hasMore"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.GroupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	before, err := pagination.Decode(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, feedQuery{
		GroupID: params.GroupID,
		Rows:    pagination.FetchSize(params.Limit),
		Before:  before,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	items, next := pagination.Page(rows, params.Limit, func(n models.Notification) pagination.Cursor {
		return pagination.Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
	})
	if items == nil {
		items = []models.Notification{}
	}
	result := &ListResult{Items: items, HasMore: next != nil}
	if next != nil {
		result.NextCursor = next.Encode()
	}
	return result, nil
}
