// Package lifecycle owns every committed mutation of users and tasks. All
// entry points (HTTP endpoints, the CLI, the MCP tools and the dialogue
// controller) go through Manager so the default-field and upsert rules hold
// regardless of the caller.
package lifecycle

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kazz187/pomofocus/internal/eventbus"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/internal/user"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

type Manager struct {
	users    user.Repository
	tasks    task.Repository
	eventBus *eventbus.Bus

	now func() time.Time
}

// NewManager returns a Manager. eventBus may be nil when nobody listens.
func NewManager(users user.Repository, tasks task.Repository, eventBus *eventbus.Bus) *Manager {
	return &Manager{
		users:    users,
		tasks:    tasks,
		eventBus: eventBus,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) publish(t eventbus.EventType, resourceID, email string) {
	if m.eventBus == nil {
		return
	}
	m.eventBus.PublishNew(t, resourceID, map[string]string{
		eventbus.MetadataUserEmail: email,
	})
}

// EnsureUser inserts the user when absent and overwrites the name when a
// different one is supplied. Calling it again with the same arguments
// performs no write.
func (m *Manager) EnsureUser(ctx context.Context, email, name string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	name = user.NormalizeName(name)
	if email == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "email is required", nil)
	}
	if name == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "name is required", nil)
	}

	u, err := m.users.Get(ctx, email)
	if err != nil && !cerr.IsCode(err, cerr.NotFound) {
		return nil, err
	}
	if u == nil {
		u = &user.User{Email: email, Name: name, CreatedAt: m.now()}
		err := m.users.Create(ctx, u)
		if err == nil {
			slog.InfoContext(ctx, "user created", "email", email)
			m.publish(eventbus.UserCreated, email, email)
			return u, nil
		}
		if !cerr.IsCode(err, cerr.AlreadyExists) {
			return nil, err
		}
		// lost a race with another writer; fall through to the name check
		if u, err = m.users.Get(ctx, email); err != nil {
			return nil, err
		}
	}

	if u.Name == name {
		return u, nil
	}
	if err := m.users.UpdateName(ctx, email, name); err != nil {
		return nil, err
	}
	u.Name = name
	m.publish(eventbus.UserUpdated, email, email)
	return u, nil
}

// CreateTask persists a new task for ownerEmail. An estimate below one is
// stored as one.
func (m *Manager) CreateTask(ctx context.Context, title, description string, estimatedPomodoros int, ownerEmail string) (*task.Task, error) {
	ownerEmail = user.NormalizeEmail(ownerEmail)
	if strings.TrimSpace(title) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "title is required", nil)
	}
	if ownerEmail == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "owner email is required", nil)
	}

	now := m.now()
	t := &task.Task{
		Title:              title,
		Description:        description,
		EstimatedPomodoros: task.ClampPomodoros(estimatedPomodoros),
		CompletedPomodoros: 0,
		Completed:          false,
		UserEmail:          ownerEmail,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := m.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "task created", "task_id", t.ID, "user_email", ownerEmail)
	m.publish(eventbus.TaskCreated, t.ID, ownerEmail)
	return t, nil
}

func (m *Manager) GetTask(ctx context.Context, id string) (*task.Task, error) {
	return m.tasks.Get(ctx, id)
}

// UpdateTask merges patch into the stored task. There is no version check:
// the last write wins.
func (m *Manager) UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "title must not be empty", nil)
	}
	t, err := m.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.save(ctx, t, patch)
}

func (m *Manager) save(ctx context.Context, t *task.Task, patch task.Patch) (*task.Task, error) {
	patch.Apply(t)
	t.EstimatedPomodoros = task.ClampPomodoros(t.EstimatedPomodoros)
	t.UpdatedAt = m.now()
	if err := m.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	m.publish(eventbus.TaskUpdated, t.ID, t.UserEmail)
	return t, nil
}

func (m *Manager) ToggleComplete(ctx context.Context, id string, completed bool) (*task.Task, error) {
	return m.UpdateTask(ctx, id, task.Patch{Completed: &completed})
}

// DeleteTask removes the task without an ownership check.
func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	t, err := m.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.tasks.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "task deleted", "task_id", id)
	m.publish(eventbus.TaskDeleted, id, t.UserEmail)
	return nil
}

func (m *Manager) ListTasks(ctx context.Context, ownerEmail string) ([]*task.Task, error) {
	return m.tasks.ListByOwner(ctx, user.NormalizeEmail(ownerEmail))
}

// ApplyEnhancement writes an enhanced title, description and estimate to
// the task identified by (id, ownerEmail). A task owned by someone else is
// reported as not found and left untouched.
func (m *Manager) ApplyEnhancement(ctx context.Context, id, ownerEmail, title, description string, estimatedPomodoros int) (*task.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "title must not be empty", nil)
	}
	t, err := m.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserEmail != user.NormalizeEmail(ownerEmail) {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return m.save(ctx, t, task.Patch{
		Title:              &title,
		Description:        &description,
		EstimatedPomodoros: &estimatedPomodoros,
	})
}
