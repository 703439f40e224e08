package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotificationNotFound is returned when a notification is not found
	// or belongs to another user
	ErrNotificationNotFound = errors.New("notification not found")
)
