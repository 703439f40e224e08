package repository

import (
	"context"

	"todoapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActionLogRepository struct {
	db *gorm.DB
}

type ActionLogRepositoryInterface interface {
	Append(ctx context.Context, action string, taskID, userID uuid.UUID) (*model.ActionLog, error)
	GetAll(ctx context.Context) ([]model.ActionLog, error)
}

var _ ActionLogRepositoryInterface = (*ActionLogRepository)(nil)

func NewActionLogRepository(db *gorm.DB) *ActionLogRepository {
	return &ActionLogRepository{db: db}
}

// Append writes one history entry. Entries are never updated or deleted.
func (r *ActionLogRepository) Append(ctx context.Context, action string, taskID, userID uuid.UUID) (*model.ActionLog, error) {
	entry := model.ActionLog{
		Action: action,
		TaskID: taskID,
		UserID: userID,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAll returns the full history, newest first, with the acting user and the
// referenced task preloaded. Task stays nil for entries whose task has since
// been deleted.
func (r *ActionLogRepository) GetAll(ctx context.Context) ([]model.ActionLog, error) {
	var entries []model.ActionLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Task").
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
