package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

// Alert is a leveled broadcast scoped to one group. ID, GroupID, CreatedBy and CreatedAt never change
// after insert.
type Alert struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	GroupID         uuid.UUID             `gorm:"column:group_id;type:uuid;not null;index:idx_alerts_group_created,priority:1" json:"groupId"`
	Title           string                `gorm:"column:title;type:text;not null" json:"title"`
	Message         string                `gorm:"column:message;type:text;not null" json:"message"`
	Level           enums.AlertLevel      `gorm:"column:level;type:text;not null" json:"level"`
	CreatedBy       uuid.UUID             `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	CreatedAt       time.Time             `gorm:"column:created_at;not null;index:idx_alerts_group_created,priority:2" json:"createdAt"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;not null" json:"updatedAt"`
	Acknowledgments []AlertAcknowledgment `gorm:"foreignKey:AlertID;references:ID;constraint:OnDelete:CASCADE" json:"acknowledgments"`
}

// TableName pins the table name used by migrations.
func (Alert) TableName() string {
	return "alerts"
}
