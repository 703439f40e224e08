package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Message   string     `gorm:"not null"`
	Type      string     `gorm:"not null;check:type IN ('task_modified', 'task_started', 'task_completed')"`
	Read      bool       `gorm:"not null;default:false"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	TaskID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserID"`
}

// Notification types
const (
	NotificationTaskModified  = "task_modified"  // a grantee edited the owner's task
	NotificationTaskStarted   = "task_started"   // the task's start date arrived
	NotificationTaskCompleted = "task_completed" // the task was auto-completed at its end date
)
