package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskPermission is an explicit grant from a task's owner to another user.
// The owner never has a row here; ownership implies full rights.
type TaskPermission struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_task_permissions_task_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_task_permissions_task_user"`
	CanEdit   bool      `gorm:"not null;default:false"`
	CanDelete bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID"`
}
