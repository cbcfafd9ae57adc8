package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertAcknowledgment records that a member received an alert. User fields are a snapshot taken at
// acknowledgment time.
type AlertAcknowledgment struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	AlertID        uuid.UUID `gorm:"column:alert_id;type:uuid;not null;uniqueIndex:ux_alert_acknowledgments_alert_user,priority:1" json:"alertId"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_alert_acknowledgments_alert_user,priority:2" json:"userId"`
	UserName       string    `gorm:"column:user_name;type:text;not null" json:"userName"`
	UserCallsign   string    `gorm:"column:user_callsign;type:text;not null;default:''" json:"userCallsign"`
	AcknowledgedAt time.Time `gorm:"column:acknowledged_at;not null" json:"timestamp"`
}

func (AlertAcknowledgment) TableName() string {
	return "alert_acknowledgments"
}
