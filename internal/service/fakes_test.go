package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"todoapp/internal/model"
	"todoapp/internal/repository"

	"github.com/google/uuid"
)

// In-memory store doubles. They mirror the repository contracts closely
// enough to drive the service layer through full scenarios.

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*model.Task
}

var _ repository.TaskRepositoryInterface = (*fakeTaskRepo)(nil)

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uuid.UUID]*model.Task{}}
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) GetAll(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Task
	for _, task := range f.tasks {
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTaskRepo) GetAllPaginated(ctx context.Context, page, limit int) ([]model.Task, int64, error) {
	all, _ := f.GetAll(ctx)
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeTaskRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	for column, value := range fields {
		switch column {
		case "title":
			task.Title = value.(string)
		case "description":
			task.Description = value.(string)
		case "completed":
			task.Completed = value.(bool)
		case "start_date":
			v := value.(time.Time)
			task.StartDate = &v
		case "end_date":
			v := value.(time.Time)
			task.EndDate = &v
		case "image":
			task.Image = attachmentValue(value)
		case "file":
			task.File = attachmentValue(value)
		case "voice":
			task.Voice = attachmentValue(value)
		}
	}
	task.UpdatedAt = time.Now()
	copied := *task
	return &copied, nil
}

func attachmentValue(value interface{}) *string {
	if value == nil {
		return nil
	}
	name := value.(string)
	return &name
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) FindStartingBetween(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Task
	for _, task := range f.tasks {
		if task.Completed || task.StartDate == nil {
			continue
		}
		if task.StartDate.Before(from) || task.StartDate.After(to) {
			continue
		}
		if task.StartNotifiedAt != nil && !task.StartNotifiedAt.Before(from) {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskRepo) FindExpiredBefore(ctx context.Context, deadline time.Time) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Task
	for _, task := range f.tasks {
		if task.Completed || task.EndDate == nil {
			continue
		}
		if task.EndDate.Before(deadline) {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) MarkStartNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return repository.ErrTaskNotFound
	}
	task.StartNotifiedAt = &at
	return nil
}

type permKey struct {
	taskID uuid.UUID
	userID uuid.UUID
}

type fakePermRepo struct {
	mu     sync.Mutex
	grants map[permKey]*model.TaskPermission
}

var _ repository.PermissionRepositoryInterface = (*fakePermRepo)(nil)

func newFakePermRepo() *fakePermRepo {
	return &fakePermRepo{grants: map[permKey]*model.TaskPermission{}}
}

func (f *fakePermRepo) Get(ctx context.Context, taskID, userID uuid.UUID) (*model.TaskPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	perm, ok := f.grants[permKey{taskID, userID}]
	if !ok {
		return nil, nil
	}
	copied := *perm
	return &copied, nil
}

func (f *fakePermRepo) Upsert(ctx context.Context, taskID, userID uuid.UUID, canEdit, canDelete bool) (*model.TaskPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := permKey{taskID, userID}
	perm, ok := f.grants[key]
	if !ok {
		perm = &model.TaskPermission{
			ID:     uuid.New(),
			TaskID: taskID,
			UserID: userID,
		}
		f.grants[key] = perm
	}
	perm.CanEdit = canEdit
	perm.CanDelete = canDelete
	copied := *perm
	return &copied, nil
}

func (f *fakePermRepo) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.grants, permKey{taskID, userID})
	return nil
}

func (f *fakePermRepo) DeleteAllForTask(ctx context.Context, taskID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.grants {
		if key.taskID == taskID {
			delete(f.grants, key)
		}
	}
	return nil
}

func (f *fakePermRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TaskPermission
	for key, perm := range f.grants {
		if key.taskID == taskID {
			out = append(out, *perm)
		}
	}
	return out, nil
}

func (f *fakePermRepo) countForTask(taskID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key := range f.grants {
		if key.taskID == taskID {
			count++
		}
	}
	return count
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
}

var _ repository.NotificationRepositoryInterface = (*fakeNotificationRepo)(nil)

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()
	copied := *notification
	f.notifications = append(f.notifications, &copied)
	return nil
}

func (f *fakeNotificationRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			copied := *n
			return &copied, nil
		}
	}
	return nil, repository.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) forUser(userID uuid.UUID) []model.Notification {
	out, _ := f.FindByUser(context.Background(), userID)
	return out
}

type fakeActionLogRepo struct {
	mu        sync.Mutex
	entries   []model.ActionLog
	appendErr error
}

var _ repository.ActionLogRepositoryInterface = (*fakeActionLogRepo)(nil)

func newFakeActionLogRepo() *fakeActionLogRepo {
	return &fakeActionLogRepo{}
}

func (f *fakeActionLogRepo) Append(ctx context.Context, action string, taskID, userID uuid.UUID) (*model.ActionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	entry := model.ActionLog{
		ID:        uuid.New(),
		Action:    action,
		TaskID:    taskID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	f.entries = append(f.entries, entry)
	return &entry, nil
}

func (f *fakeActionLogRepo) GetAll(ctx context.Context) ([]model.ActionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ActionLog, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeActionLogRepo) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, entry := range f.entries {
		out = append(out, entry.Action)
	}
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepositoryInterface = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}
