// Package roster answers how many members a group has, the denominator of the response rate.
package roster

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
)

// MemberCounter supplies group population counts.
type MemberCounter interface {
	GroupMemberCount(ctx context.Context, groupID uuid.UUID) (int, error)
}

// Repository counts approved rows in group_members.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) GroupMemberCount(ctx context.Context, groupID uuid.UUID) (int, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ?", groupID, enums.MembershipStatusApproved).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count group members")
	}
	return int(count), nil
}

// StaticCounter reports the same population for every group.
type StaticCounter int

func (c StaticCounter) GroupMemberCount(context.Context, uuid.UUID) (int, error) {
	if c < 0 {
		return 0, nil
	}
	return int(c), nil
}
