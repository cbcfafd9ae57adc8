package acknowledgments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aresconnect/ares-connect-backend/internal/repo"
	"github.com/aresconnect/ares-connect-backend/pkg/db"
	"github.com/aresconnect/ares-connect-backend/pkg/db/models"
)

// Repository is the acknowledgment ledger. Every method returns repo.ErrNotFound when the alert is
// unknown, so an alert without acknowledgments is distinguishable from a missing one.
type Repository interface {
	// Append records ack unless (AlertID, UserID) is already present, in which case the stored
	// record is returned with Applied=false.
	Append(ctx context.Context, ack models.AlertAcknowledgment) (AppendResult, error)
	ListForAlert(ctx context.Context, alertID uuid.UUID) ([]models.AlertAcknowledgment, error)
	Exists(ctx context.Context, alertID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, alertID uuid.UUID) (int, error)
}

// AppendResult reports the outcome of a ledger append.
type AppendResult struct {
	Acknowledgment models.AlertAcknowledgment
	Applied        bool
	GroupID        uuid.UUID
}

type repository struct {
	repo.Base
}

// NewRepository returns the gorm-backed ledger.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func alertGroup(tx *gorm.DB, alertID uuid.UUID) (uuid.UUID, error) {
	var alert models.Alert
	if err := tx.Select("id", "group_id").Where("id = ?", alertID).Take(&alert).Error; err != nil {
		return uuid.Nil, err
	}
	return alert.GroupID, nil
}

func (r *repository) Append(ctx context.Context, ack models.AlertAcknowledgment) (AppendResult, error) {
	var result AppendResult
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		groupID, err := alertGroup(tx, ack.AlertID)
		if err != nil {
			return err
		}
		result.GroupID = groupID

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "alert_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&ack)
		if res.Error != nil {
			// the alert was deleted between the lookup and the insert
			if db.IsForeignKeyViolation(res.Error) {
				return repo.ErrNotFound
			}
			return res.Error
		}
		if res.RowsAffected > 0 {
			result.Acknowledgment = ack
			result.Applied = true
			return nil
		}

		return tx.Where("alert_id = ? AND user_id = ?", ack.AlertID, ack.UserID).
			Take(&result.Acknowledgment).Error
	})
	if err != nil {
		return AppendResult{}, err
	}
	return result, nil
}

func (r *repository) ListForAlert(ctx context.Context, alertID uuid.UUID) ([]models.AlertAcknowledgment, error) {
	var acks []models.AlertAcknowledgment
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := alertGroup(tx, alertID); err != nil {
			return err
		}
		return tx.Where("alert_id = ?", alertID).Order("acknowledged_at ASC").Find(&acks).Error
	})
	if err != nil {
		return nil, err
	}
	if acks == nil {
		acks = []models.AlertAcknowledgment{}
	}
	return acks, nil
}

func (r *repository) Exists(ctx context.Context, alertID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := alertGroup(tx, alertID); err != nil {
			return err
		}
		return tx.Model(&models.AlertAcknowledgment{}).
			Where("alert_id = ? AND user_id = ?", alertID, userID).
			Count(&count).Error
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Count(ctx context.Context, alertID uuid.UUID) (int, error) {
	var count int64
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := alertGroup(tx, alertID); err != nil {
			return err
		}
		return tx.Model(&models.AlertAcknowledgment{}).Where("alert_id = ?", alertID).Count(&count).Error
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
