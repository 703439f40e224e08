package service

import (
	"context"
	"errors"
	"fmt"

	"todoapp/internal/model"
	"todoapp/internal/repository"

	"github.com/google/uuid"
)

// NotificationService creates and manages user-directed notifications.
type NotificationService struct {
	notifications repository.NotificationRepositoryInterface
	users         repository.UserRepositoryInterface
}

func NewNotificationService(
	notifications repository.NotificationRepositoryInterface,
	users repository.UserRepositoryInterface,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
	}
}

func (s *NotificationService) create(ctx context.Context, message, notificationType string, recipientID uuid.UUID, taskID *uuid.UUID) error {
	notification := &model.Notification{
		Message: message,
		Type:    notificationType,
		UserID:  recipientID,
		TaskID:  taskID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return Internal("failed to create notification", err)
	}
	return nil
}

// NotifyTaskModified tells a task's owner that a grantee changed the task.
// A no-op when the actor is the owner: users are never notified about their
// own actions.
func (s *NotificationService) NotifyTaskModified(ctx context.Context, task *model.Task, actorID uuid.UUID) error {
	if task.OwnerID == actorID {
		return nil
	}

	message := fmt.Sprintf("Your task %q was modified.", task.Title)
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return Internal("failed to look up acting user", err)
	}
	if actor != nil {
		message = fmt.Sprintf("%s modified your task %q.", actor.Name, task.Title)
	}

	return s.create(ctx, message, model.NotificationTaskModified, task.OwnerID, &task.ID)
}

// NotifyTaskStarted tells a task's owner that its start date arrived today.
func (s *NotificationService) NotifyTaskStarted(ctx context.Context, task *model.Task) error {
	message := fmt.Sprintf("Your task %q starts today.", task.Title)
	return s.create(ctx, message, model.NotificationTaskStarted, task.OwnerID, &task.ID)
}

// NotifyTaskCompleted tells a task's owner that the task was automatically
// marked completed at its end date.
func (s *NotificationService) NotifyTaskCompleted(ctx context.Context, task *model.Task) error {
	message := fmt.Sprintf("Your task %q was automatically marked as completed.", task.Title)
	return s.create(ctx, message, model.NotificationTaskCompleted, task.OwnerID, &task.ID)
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	notifications, err := s.notifications.FindByUser(ctx, userID)
	if err != nil {
		return nil, Internal("failed to list notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error) {
	notification, err := s.notifications.MarkAsRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return nil, NotFound("notification not found")
		}
		return nil, Internal("failed to mark notification as read", err)
	}
	return notification, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notifications.MarkAllAsRead(ctx, userID); err != nil {
		return Internal("failed to mark notifications as read", err)
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.notifications.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return NotFound("notification not found")
		}
		return Internal("failed to delete notification", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, Internal("failed to count unread notifications", err)
	}
	return count, nil
}
