package repository

import (
	"context"
	"errors"
	"time"

	"todoapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetAll(ctx context.Context) ([]model.Task, error)
	GetAllPaginated(ctx context.Context, page, limit int) ([]model.Task, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]model.Task, error)
	FindExpiredBefore(ctx context.Context, deadline time.Time) ([]model.Task, error)
	MarkStartNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetAll retrieves every task, open tasks first, oldest first
func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).Order("completed").Order("created_at").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// GetAllPaginated retrieves one page of tasks along with the total count
func (r *TaskRepository) GetAllPaginated(ctx context.Context, page, limit int) ([]model.Task, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Order("completed").Order("created_at").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tasks)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return tasks, total, nil
}

// UpdateFields applies a partial update and returns the fresh record.
// Only the keys present in fields are written; nil values clear columns.
func (r *TaskRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Task, error) {
	if len(fields) > 0 {
		result := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrTaskNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// FindStartingBetween retrieves the incomplete tasks whose start date falls
// within [from, to]. Completed tasks are excluded at query time so a task
// finishing mid-scan drops out without locking.
func (r *TaskRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("start_date >= ? AND start_date <= ?", from, to).
		Where("completed = ?", false).
		Where("start_notified_at IS NULL OR start_notified_at < ?", from).
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// FindExpiredBefore retrieves the incomplete tasks whose end date is strictly
// before the deadline
func (r *TaskRepository) FindExpiredBefore(ctx context.Context, deadline time.Time) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("end_date < ?", deadline).
		Where("completed = ?", false).
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// MarkStartNotified records that a task_started notification has been sent
func (r *TaskRepository) MarkStartNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("start_notified_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
