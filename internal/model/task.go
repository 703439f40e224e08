package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Completed   bool      `gorm:"not null;default:false;index"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	StartDate   *time.Time
	EndDate     *time.Time
	Image       *string
	File        *string
	Voice       *string
	// Set when a task_started notification has been emitted, so repeated
	// scans within the same day do not notify twice.
	StartNotifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Owner User `gorm:"foreignKey:OwnerID"`
}
