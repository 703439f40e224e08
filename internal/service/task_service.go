package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"todoapp/internal/model"
	"todoapp/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService orchestrates task mutations: validate, authorize, persist,
// then side effects (action log, notifications). Authorization always runs
// before any persistence mutation; a denied request mutates nothing.
type TaskService struct {
	tasks         repository.TaskRepositoryInterface
	perms         repository.PermissionRepositoryInterface
	logs          repository.ActionLogRepositoryInterface
	notifications *NotificationService
	logger        *zap.Logger
}

func NewTaskService(
	tasks repository.TaskRepositoryInterface,
	perms repository.PermissionRepositoryInterface,
	logs repository.ActionLogRepositoryInterface,
	notifications *NotificationService,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		tasks:         tasks,
		perms:         perms,
		logs:          logs,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateTaskInput carries the fields accepted at task creation.
type CreateTaskInput struct {
	Title       string
	Description string
	Completed   bool
	StartDate   *time.Time
	EndDate     *time.Time
	Image       *string
	File        *string
	Voice       *string
}

// AttachmentPatch is the tri-state update for an attachment field: a nil
// *AttachmentPatch leaves the field untouched, Clear empties it, and Name
// replaces it with a newly stored file.
type AttachmentPatch struct {
	Clear bool
	Name  string
}

// UpdateTaskPatch carries a partial update. Nil pointers mean "leave as is".
type UpdateTaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	StartDate   *time.Time
	EndDate     *time.Time
	Image       *AttachmentPatch
	File        *AttachmentPatch
	Voice       *AttachmentPatch
}

// TaskPage is one page of the task listing.
type TaskPage struct {
	Data        []model.Task
	Total       int64
	TotalPages  int
	CurrentPage int
}

func (s *TaskService) loadTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, NotFound("task not found")
		}
		return nil, Internal("failed to load task", err)
	}
	return task, nil
}

func (s *TaskService) GetAll(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.tasks.GetAll(ctx)
	if err != nil {
		return nil, Internal("failed to list tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) GetAllPaginated(ctx context.Context, page, limit int) (*TaskPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}

	tasks, total, err := s.tasks.GetAllPaginated(ctx, page, limit)
	if err != nil {
		return nil, Internal("failed to list tasks", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &TaskPage{
		Data:        tasks,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// GetByID loads a task and records the READ in the action log.
func (s *TaskService) GetByID(ctx context.Context, id, actorID uuid.UUID) (*model.Task, error) {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.logs.Append(ctx, model.ActionRead, task.ID, actorID); err != nil {
		return nil, Internal("failed to record read", err)
	}
	return task, nil
}

// Create validates the input, persists a task owned by the actor and records
// the CREATE. When recording fails after the task row was written, the
// persisted task is returned together with the error so callers know the
// mutation took effect.
func (s *TaskService) Create(ctx context.Context, actorID uuid.UUID, input CreateTaskInput) (*model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, Validation("title is required")
	}

	task := &model.Task{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		OwnerID:     actorID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Image:       input.Image,
		File:        input.File,
		Voice:       input.Voice,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, Internal("failed to create task", err)
	}

	if _, err := s.logs.Append(ctx, model.ActionCreate, task.ID, actorID); err != nil {
		return task, Internal("failed to record create", err)
	}
	return task, nil
}

// Update applies a partial patch after an edit-right check. Fields not in
// the patch stay untouched; a cleared or replaced attachment is returned in
// removed so callers can clean up the superseded upload. When the actor is a
// grantee rather than the owner, the owner is notified; the actor never is.
// A side-effect failure after the row was written returns the updated task
// together with the error; task is nil only when nothing was persisted.
func (s *TaskService) Update(ctx context.Context, id, actorID uuid.UUID, patch UpdateTaskPatch) (task *model.Task, removed []string, err error) {
	existing, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := s.authorize(ctx, existing, actorID, RightEdit); err != nil {
		return nil, nil, err
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, nil, Validation("title cannot be empty")
		}
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}
	if patch.StartDate != nil {
		fields["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		fields["end_date"] = *patch.EndDate
	}
	removed = applyAttachment(fields, "image", patch.Image, existing.Image, removed)
	removed = applyAttachment(fields, "file", patch.File, existing.File, removed)
	removed = applyAttachment(fields, "voice", patch.Voice, existing.Voice, removed)

	updated, err := s.tasks.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, nil, NotFound("task not found")
		}
		return nil, nil, Internal("failed to update task", err)
	}

	if _, err := s.logs.Append(ctx, model.ActionUpdate, updated.ID, actorID); err != nil {
		return updated, removed, Internal("failed to record update", err)
	}

	if err := s.notifications.NotifyTaskModified(ctx, existing, actorID); err != nil {
		return updated, removed, err
	}
	return updated, removed, nil
}

func applyAttachment(fields map[string]interface{}, column string, patch *AttachmentPatch, current *string, removed []string) []string {
	if patch == nil {
		return removed
	}
	if current != nil {
		removed = append(removed, *current)
	}
	if patch.Clear {
		fields[column] = nil
	} else {
		fields[column] = patch.Name
	}
	return removed
}

// Delete removes a task after a delete-right check. The DELETE is logged
// while the task still exists, then the task's grants go, then the task.
// The grant cascade is additionally enforced by the database foreign key, so
// a crash between the two deletes cannot leave a dangling grant.
func (s *TaskService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, task, actorID, RightDelete); err != nil {
		return err
	}

	if _, err := s.logs.Append(ctx, model.ActionDelete, task.ID, actorID); err != nil {
		return Internal("failed to record delete", err)
	}

	if err := s.perms.DeleteAllForTask(ctx, task.ID); err != nil {
		return Internal("failed to delete task permissions", err)
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return Internal("failed to delete task", err)
	}
	return nil
}

// History returns the full action log.
func (s *TaskService) History(ctx context.Context) ([]model.ActionLog, error) {
	entries, err := s.logs.GetAll(ctx)
	if err != nil {
		return nil, Internal("failed to load history", err)
	}
	return entries, nil
}

// CheckAndNotifyTaskStarts notifies owners of incomplete tasks whose start
// date falls within the day containing now. Each task is marked so repeated
// scans within the same day stay silent.
func (s *TaskService) CheckAndNotifyTaskStarts(ctx context.Context, now time.Time) error {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24*time.Hour - time.Nanosecond)

	tasks, err := s.tasks.FindStartingBetween(ctx, startOfDay, endOfDay)
	if err != nil {
		return Internal("failed to scan starting tasks", err)
	}

	for i := range tasks {
		task := &tasks[i]
		if err := s.notifications.NotifyTaskStarted(ctx, task); err != nil {
			return err
		}
		if err := s.tasks.MarkStartNotified(ctx, task.ID, now); err != nil {
			// The task may have been deleted mid-scan; the notification
			// already exists either way.
			if errors.Is(err, repository.ErrTaskNotFound) {
				continue
			}
			return Internal("failed to mark task as start-notified", err)
		}
	}
	if len(tasks) > 0 {
		s.logger.Info("notified task starts", zap.Int("count", len(tasks)))
	}
	return nil
}

// AutoCompleteExpiredTasks marks incomplete tasks past their end date as
// completed and notifies their owners.
func (s *TaskService) AutoCompleteExpiredTasks(ctx context.Context, now time.Time) error {
	tasks, err := s.tasks.FindExpiredBefore(ctx, now)
	if err != nil {
		return Internal("failed to scan expired tasks", err)
	}

	for i := range tasks {
		task := &tasks[i]
		if _, err := s.tasks.UpdateFields(ctx, task.ID, map[string]interface{}{"completed": true}); err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				continue
			}
			return Internal("failed to auto-complete task", err)
		}
		if err := s.notifications.NotifyTaskCompleted(ctx, task); err != nil {
			return err
		}
	}
	if len(tasks) > 0 {
		s.logger.Info("auto-completed expired tasks", zap.Int("count", len(tasks)))
	}
	return nil
}
