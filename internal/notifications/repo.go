package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/pagination"
)

// Repository persists the group notification feed.
type Repository interface {
	// Create inserts the row unless the group already has one for the alert; created reports which.
	Create(ctx context.Context, notification *models.Notification) (created bool, err error)
	List(ctx context.Context, query feedQuery) ([]models.Notification, error)
}

// feedQuery selects up to Rows entries of one group, strictly older than Before when set.
type feedQuery struct {
	GroupID uuid.UUID
	Rows    int
	Before  *pagination.Cursor
}

type repositoryImpl struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) (bool, error) {
	res := r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "alert_id"}},
		DoNothing: true,
	}).Create(notification)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, query feedQuery) ([]models.Notification, error) {
	tx := r.DB(ctx).Where("group_id = ?", query.GroupID)
	if c := query.Before; c != nil {
		tx = tx.Where("(created_at < ?) OR (created_at = ? AND id < ?)", c.CreatedAt, c.CreatedAt, c.ID)
	}

	size := query.Rows
	if size <= 0 {
		size = pagination.FetchSize(0)
	}
	rows := make([]models.Notification, 0, size)
	if err := tx.Order("created_at DESC").Order("id DESC").Limit(size).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
