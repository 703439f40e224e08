package handler

import (
	"net/http"
	"time"

	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
)

type ActionLogHandler struct {
	tasks *service.TaskService
}

func NewActionLogHandler(tasks *service.TaskService) *ActionLogHandler {
	return &ActionLogHandler{tasks: tasks}
}

type historyUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type historyTask struct {
	ID    *string `json:"id"`
	Title string  `json:"title"`
}

type HistoryEntry struct {
	ID        string      `json:"id"`
	Action    string      `json:"action"`
	Timestamp time.Time   `json:"timestamp"`
	User      historyUser `json:"user"`
	Task      historyTask `json:"task"`
}

// GetHistory returns the full action log. Entries whose task has been
// deleted since are reported as such instead of erroring.
func (h *ActionLogHandler) GetHistory(c *gin.Context) {
	if _, ok := authenticatedUserID(c); !ok {
		return
	}

	entries, err := h.tasks.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		item := HistoryEntry{
			ID:        entry.ID.String(),
			Action:    entry.Action,
			Timestamp: entry.Timestamp,
			User: historyUser{
				ID:   entry.UserID.String(),
				Name: entry.User.Name,
			},
			Task: historyTask{Title: "[deleted task]"},
		}
		if entry.Task != nil {
			taskID := entry.Task.ID.String()
			item.Task = historyTask{ID: &taskID, Title: entry.Task.Title}
		}
		result = append(result, item)
	}
	c.JSON(http.StatusOK, result)
}
