package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"todoapp/internal/model"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	tasks *service.TaskService
	files *FileStore
}

func NewTaskHandler(tasks *service.TaskService, files *FileStore) *TaskHandler {
	return &TaskHandler{tasks: tasks, files: files}
}

// taskRequest is the JSON body (or the "data" part of a multipart request)
// for task creation and update. On update, attachment fields set to null (or
// the string "null") clear the stored file.
type taskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	Image       json.RawMessage `json:"image"`
	File        json.RawMessage `json:"file"`
	Voice       json.RawMessage `json:"voice"`
}

// PermissionRequest grants edit/delete rights on a task to another user.
type PermissionRequest struct {
	UserID    string `json:"userId" binding:"required,uuid"`
	CanEdit   bool   `json:"canEdit"`
	CanDelete bool   `json:"canDelete"`
}

// TaskResponse is the wire shape of a task, with attachment names rewritten
// to retrieval URLs.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	OwnerID     string     `json:"ownerId"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Image       *string    `json:"image"`
	File        *string    `json:"file"`
	Voice       *string    `json:"voice"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PermissionResponse is the wire shape of a grant.
type PermissionResponse struct {
	TaskID    string `json:"taskId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName,omitempty"`
	CanEdit   bool   `json:"canEdit"`
	CanDelete bool   `json:"canDelete"`
}

func taskResponse(c *gin.Context, task *model.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		OwnerID:     task.OwnerID.String(),
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		Image:       fileURL(c, task.Image),
		File:        fileURL(c, task.File),
		Voice:       fileURL(c, task.Voice),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func taskIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// parseTaskRequest reads the request body: plain JSON, or multipart with a
// "data" JSON part plus optional image/file/voice file parts. Uploaded files
// are stored immediately and their stored names returned by part name.
func (h *TaskHandler) parseTaskRequest(c *gin.Context) (*taskRequest, map[string]string, error) {
	var req taskRequest
	uploads := map[string]string{}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		data := c.PostForm("data")
		if data != "" {
			if err := json.Unmarshal([]byte(data), &req); err != nil {
				return nil, nil, err
			}
		}
		for _, field := range []string{"image", "file", "voice"} {
			fh, err := c.FormFile(field)
			if err != nil {
				continue
			}
			name, err := h.files.Save(c, fh)
			if err != nil {
				return nil, nil, err
			}
			uploads[field] = name
		}
		return &req, uploads, nil
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, nil, err
	}
	return &req, uploads, nil
}

// rawIsNull reports whether a JSON attachment field was explicitly nulled.
// The original client sends either JSON null or the string "null".
func rawIsNull(raw json.RawMessage) bool {
	return bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`"null"`))
}

// GetAll returns every task
func (h *TaskHandler) GetAll(c *gin.Context) {
	if _, ok := authenticatedUserID(c); !ok {
		return
	}

	tasks, err := h.tasks.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, taskResponse(c, &tasks[i]))
	}
	c.JSON(http.StatusOK, result)
}

// GetAllPaginated returns one page of tasks
func (h *TaskHandler) GetAllPaginated(c *gin.Context) {
	if _, ok := authenticatedUserID(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	result, err := h.tasks.GetAllPaginated(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]TaskResponse, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, taskResponse(c, &result.Data[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        data,
		"total":       result.Total,
		"totalPages":  result.TotalPages,
		"currentPage": result.CurrentPage,
	})
}

// GetByID returns a single task and records the read in the history
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResponse(c, task))
}

// Create creates a task owned by the authenticated user
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	req, uploads, err := h.parseTaskRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	input := service.CreateTaskInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.Completed != nil {
		input.Completed = *req.Completed
	}
	for field, name := range uploads {
		stored := name
		switch field {
		case "image":
			input.Image = &stored
		case "file":
			input.File = &stored
		case "voice":
			input.Voice = &stored
		}
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, input)
	if err != nil {
		// Uploads are orphans only when the task row was never written;
		// a non-nil task means the stored files are referenced by it
		if task == nil {
			for _, name := range uploads {
				h.files.Remove(name)
			}
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskResponse(c, task))
}

// Update applies a partial update to a task
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	req, uploads, err := h.parseTaskRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	patch := service.UpdateTaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	patch.Image = attachmentPatch(uploads["image"], req.Image)
	patch.File = attachmentPatch(uploads["file"], req.File)
	patch.Voice = attachmentPatch(uploads["voice"], req.Voice)

	task, removed, err := h.tasks.Update(c.Request.Context(), taskID, userID, patch)
	if err != nil {
		if task == nil {
			// Nothing persisted (denied, invalid, absent): the files stored
			// for this request are orphans
			for _, name := range uploads {
				h.files.Remove(name)
			}
		} else {
			// The patch persisted before a side effect failed: the task now
			// references the fresh uploads, only superseded files go
			for _, name := range removed {
				h.files.Remove(name)
			}
		}
		respondError(c, err)
		return
	}

	// Replaced or cleared attachments are removed best-effort; a failure is
	// logged, never surfaced
	for _, name := range removed {
		h.files.Remove(name)
	}

	c.JSON(http.StatusOK, taskResponse(c, task))
}

// attachmentPatch resolves one attachment field: a fresh upload wins,
// otherwise an explicit null clears, otherwise the field stays untouched.
func attachmentPatch(uploaded string, raw json.RawMessage) *service.AttachmentPatch {
	if uploaded != "" {
		return &service.AttachmentPatch{Name: uploaded}
	}
	if rawIsNull(raw) {
		return &service.AttachmentPatch{Clear: true}
	}
	return nil
}

// Delete removes a task and its permission grants
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), taskID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GrantPermission shares edit/delete rights on a task with another user
func (h *TaskHandler) GrantPermission(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	perm, err := h.tasks.GrantPermission(c.Request.Context(), taskID, userID, targetID, req.CanEdit, req.CanDelete)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PermissionResponse{
		TaskID:    perm.TaskID.String(),
		UserID:    perm.UserID.String(),
		CanEdit:   perm.CanEdit,
		CanDelete: perm.CanDelete,
	})
}

// GetPermissions lists the grants on a task. Owner only.
func (h *TaskHandler) GetPermissions(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	perms, err := h.tasks.ListPermissions(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]PermissionResponse, 0, len(perms))
	for _, perm := range perms {
		result = append(result, PermissionResponse{
			TaskID:    perm.TaskID.String(),
			UserID:    perm.UserID.String(),
			UserName:  perm.User.Name,
			CanEdit:   perm.CanEdit,
			CanDelete: perm.CanDelete,
		})
	}
	c.JSON(http.StatusOK, result)
}

// RevokePermission removes a user's grant on a task. Owner only.
func (h *TaskHandler) RevokePermission(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	if err := h.tasks.RevokePermission(c.Request.Context(), taskID, userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
