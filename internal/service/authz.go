package service

import (
	"context"

	"todoapp/internal/model"

	"github.com/google/uuid"
)

// Right is a mutating capability on a task.
type Right int

const (
	RightEdit Right = iota
	RightDelete
)

func (r Right) String() string {
	if r == RightDelete {
		return "delete"
	}
	return "edit"
}

// authorize decides whether userID may exercise a right on an already loaded
// task: allowed iff the user owns the task or holds a grant with the matching
// flag. The grant is read fresh on every call so revocations take effect
// between requests. No side effects.
func (s *TaskService) authorize(ctx context.Context, task *model.Task, userID uuid.UUID, right Right) error {
	if task.OwnerID == userID {
		return nil
	}

	perm, err := s.perms.Get(ctx, task.ID, userID)
	if err != nil {
		return Internal("failed to check permissions", err)
	}
	if perm == nil {
		return Forbidden("you don't have permission to " + right.String() + " this task")
	}

	allowed := false
	switch right {
	case RightEdit:
		allowed = perm.CanEdit
	case RightDelete:
		allowed = perm.CanDelete
	}
	if !allowed {
		return Forbidden("you don't have permission to " + right.String() + " this task")
	}
	return nil
}

// GrantPermission lets a task's owner share edit/delete rights with another
// user. Grants are upserts: re-granting replaces the previous flag pair.
func (s *TaskService) GrantPermission(ctx context.Context, taskID, ownerID, targetUserID uuid.UUID, canEdit, canDelete bool) (*model.TaskPermission, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.OwnerID != ownerID {
		return nil, Forbidden("only the task owner can grant permissions")
	}
	if targetUserID == ownerID {
		return nil, Validation("cannot grant permissions to the task owner")
	}

	perm, err := s.perms.Upsert(ctx, taskID, targetUserID, canEdit, canDelete)
	if err != nil {
		return nil, Internal("failed to grant permission", err)
	}
	return perm, nil
}

// RevokePermission removes a user's grant on a task. Owner only.
func (s *TaskService) RevokePermission(ctx context.Context, taskID, ownerID, targetUserID uuid.UUID) error {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}

	if task.OwnerID != ownerID {
		return Forbidden("only the task owner can revoke permissions")
	}

	if err := s.perms.Delete(ctx, taskID, targetUserID); err != nil {
		return Internal("failed to revoke permission", err)
	}
	return nil
}

// ListPermissions returns the grants on a task. Owner only.
func (s *TaskService) ListPermissions(ctx context.Context, taskID, ownerID uuid.UUID) ([]model.TaskPermission, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.OwnerID != ownerID {
		return nil, Forbidden("only the task owner can list permissions")
	}

	perms, err := s.perms.ListByTask(ctx, taskID)
	if err != nil {
		return nil, Internal("failed to list permissions", err)
	}
	return perms, nil
}
