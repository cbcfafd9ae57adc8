package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

// Notification is a group feed entry materialised from an alert_created event.
type Notification struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	GroupID   uuid.UUID        `gorm:"column:group_id;type:uuid;not null;uniqueIndex:ux_notifications_group_alert,priority:1" json:"groupId"`
	AlertID   uuid.UUID        `gorm:"column:alert_id;type:uuid;not null;uniqueIndex:ux_notifications_group_alert,priority:2" json:"alertId"`
	Level     enums.AlertLevel `gorm:"column:level;type:text;not null" json:"level"`
	Title     string           `gorm:"column:title;type:text;not null" json:"title"`
	Body      string           `gorm:"column:body;type:text;not null" json:"body"`
	CreatedAt time.Time        `gorm:"column:created_at;not null" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
