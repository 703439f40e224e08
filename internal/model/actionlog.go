package model

import (
	"time"

	"github.com/google/uuid"
)

// ActionLog is an append-only record of who did what to which task.
// TaskID intentionally carries no foreign key: entries outlive the tasks
// they reference, and history reports such tasks as deleted.
type ActionLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Action    string    `gorm:"not null;check:action IN ('CREATE', 'READ', 'UPDATE', 'DELETE')"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Timestamp time.Time `gorm:"autoCreateTime"`

	User User  `gorm:"foreignKey:UserID"`
	Task *Task `gorm:"foreignKey:TaskID"`
}

// Logged actions
const (
	ActionCreate = "CREATE"
	ActionRead   = "READ"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)
