package repository

import (
	"context"
	"errors"

	"todoapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

type PermissionRepositoryInterface interface {
	Get(ctx context.Context, taskID, userID uuid.UUID) (*model.TaskPermission, error)
	Upsert(ctx context.Context, taskID, userID uuid.UUID, canEdit, canDelete bool) (*model.TaskPermission, error)
	Delete(ctx context.Context, taskID, userID uuid.UUID) error
	DeleteAllForTask(ctx context.Context, taskID uuid.UUID) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskPermission, error)
}

var _ PermissionRepositoryInterface = (*PermissionRepository)(nil)

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Get returns the grant for (taskID, userID), or nil when none exists
func (r *PermissionRepository) Get(ctx context.Context, taskID, userID uuid.UUID) (*model.TaskPermission, error) {
	var perm model.TaskPermission
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

// Upsert creates or replaces the grant for (taskID, userID). Re-granting
// overwrites the previous flags rather than adding a second row.
func (r *PermissionRepository) Upsert(ctx context.Context, taskID, userID uuid.UUID, canEdit, canDelete bool) (*model.TaskPermission, error) {
	perm := model.TaskPermission{
		TaskID:    taskID,
		UserID:    userID,
		CanEdit:   canEdit,
		CanDelete: canDelete,
	}

	// Transaction guards against a concurrent grant for the same pair
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.TaskPermission
		err := tx.Where("task_id = ? AND user_id = ?", taskID, userID).First(&existing).Error

		if err == nil {
			existing.CanEdit = canEdit
			existing.CanDelete = canDelete
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			perm = existing
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&perm).Error
	})
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

// Delete revokes the grant for (taskID, userID)
func (r *PermissionRepository) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&model.TaskPermission{}).Error
}

// DeleteAllForTask removes every grant referencing a task. Called before the
// task itself is deleted so no grant is ever left dangling.
func (r *PermissionRepository) DeleteAllForTask(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&model.TaskPermission{}).Error
}

// ListByTask returns every grant on a task with the grantee preloaded
func (r *PermissionRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskPermission, error) {
	var perms []model.TaskPermission
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Find(&perms).Error
	return perms, err
}
