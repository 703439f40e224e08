package handler

import (
	"net/http"
	"time"

	"todoapp/internal/model"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	TaskID    *string   `json:"taskId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func notificationResponse(n *model.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.TaskID != nil {
		taskID := n.TaskID.String()
		resp.TaskID = &taskID
	}
	return resp
}

func notificationIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// GetAll returns the authenticated user's notifications, newest first
func (h *NotificationHandler) GetAll(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	notifications, err := h.notifications.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, notificationResponse(&notifications[i]))
	}
	c.JSON(http.StatusOK, result)
}

// CountUnread returns the number of unread notifications
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkAsRead flags one notification as read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	id, ok := notificationIDParam(c)
	if !ok {
		return
	}

	notification, err := h.notifications.MarkAsRead(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notificationResponse(notification))
}

// MarkAllAsRead flags every unread notification as read
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes one notification
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	id, ok := notificationIDParam(c)
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
