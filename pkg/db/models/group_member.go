package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

// GroupMember is a roster entry. Only approved members count toward response rates.
type GroupMember struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	GroupID   uuid.UUID              `gorm:"column:group_id;type:uuid;not null;index"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	FullName  string                 `gorm:"column:full_name;type:text;not null"`
	Callsign  string                 `gorm:"column:callsign;type:text"`
	Role      enums.MemberRole       `gorm:"column:role;type:text;not null"`
	Status    enums.MembershipStatus `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
