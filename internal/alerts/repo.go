package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

// Repository persists alerts. Lookups of unknown alerts return repo.ErrNotFound.
type Repository interface {
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error)
	FindByID(ctx context.Context, alertID uuid.UUID) (*models.Alert, error)
	Create(ctx context.Context, alert *models.Alert) error
	Update(ctx context.Context, alertID uuid.UUID, changes Changes, now time.Time) (*models.Alert, error)
	// Delete removes the alert and every acknowledgment recorded against it in one step.
	Delete(ctx context.Context, alertID uuid.UUID) error
}

// Changes carries the mutable alert fields; nil means unchanged.
type Changes struct {
	Title   *string
	Message *string
	Level   *enums.AlertLevel
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Message == nil && c.Level == nil
}

// Apply copies the set fields onto alert.
func (c Changes) Apply(alert *models.Alert) {
	if c.Title != nil {
		alert.Title = *c.Title
	}
	if c.Message != nil {
		alert.Message = *c.Message
	}
	if c.Level != nil {
		alert.Level = *c.Level
	}
}

type repository struct {
	repo.Base
}

// NewRepository returns the gorm-backed alert repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func orderedAcknowledgments(db *gorm.DB) *gorm.DB {
	return db.Order("acknowledged_at ASC")
}

func (r *repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.DB(ctx).
		Preload("Acknowledgments", orderedAcknowledgments).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repository) FindByID(ctx context.Context, alertID uuid.UUID) (*models.Alert, error) {
	return findAlert(r.DB(ctx), alertID)
}

func findAlert(db *gorm.DB, alertID uuid.UUID) (*models.Alert, error) {
	var alert models.Alert
	if err := db.Preload("Acknowledgments", orderedAcknowledgments).
		Where("id = ?", alertID).
		First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) Create(ctx context.Context, alert *models.Alert) error {
	return r.DB(ctx).Omit("Acknowledgments").Create(alert).Error
}

func (r *repository) Update(ctx context.Context, alertID uuid.UUID, changes Changes, now time.Time) (*models.Alert, error) {
	updates := map[string]any{"updated_at": now}
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Message != nil {
		updates["message"] = *changes.Message
	}
	if changes.Level != nil {
		updates["level"] = *changes.Level
	}

	var updated *models.Alert
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Alert{}).Where("id = ?", alertID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		alert, err := findAlert(tx, alertID)
		if err != nil {
			return err
		}
		updated = alert
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, alertID uuid.UUID) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("alert_id = ?", alertID).Delete(&models.AlertAcknowledgment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", alertID).Delete(&models.Alert{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
