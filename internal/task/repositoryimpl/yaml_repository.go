package repositoryimpl

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/pkg/cerr"
	"github.com/kazz187/pomofocus/pkg/storage"
)

const tasksPrefix = "tasks"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

// path maps a task id onto its object. Only ulids are accepted, so an id can
// never name a record outside tasks/.
func path(id string) (string, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return "", cerr.NewError(cerr.NotFound, "task not found", fmt.Errorf("invalid task id %q: %w", id, err))
	}
	return fmt.Sprintf("%s/%s.yaml", tasksPrefix, id), nil
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = ulid.Make().String()
	}
	p, err := path(t.ID)
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "invalid task id", err)
	}
	exists, err := r.storage.Exists(ctx, p)
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "task already exists", nil)
	}
	return r.write(ctx, p, t)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	p, err := path(id)
	if err != nil {
		return nil, err
	}
	return r.read(ctx, p)
}

func (r *YAMLRepository) read(ctx context.Context, p string) (*task.Task, error) {
	data, err := r.storage.Read(ctx, p)
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", err)
	}
	t := &task.Task{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to decode %s: %w", p, err))
	}
	return t, nil
}

func (r *YAMLRepository) ListByOwner(ctx context.Context, userEmail string) ([]*task.Task, error) {
	paths, err := r.storage.List(ctx, tasksPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("tasks", err)
	}

	var out []*task.Task
	for _, p := range paths {
		t, err := r.read(ctx, p)
		if err != nil {
			// A record deleted mid-scan or a corrupt file must not hide the rest.
			slog.WarnContext(ctx, "skipping unreadable task record", "path", p, "error", err)
			continue
		}
		if t.UserEmail == userEmail {
			out = append(out, t)
		}
	}
	// Newest first; ulids break ties between tasks created in the same instant.
	slices.SortFunc(out, func(a, b *task.Task) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return out, nil
}

func (r *YAMLRepository) Update(ctx context.Context, t *task.Task) error {
	p, err := path(t.ID)
	if err != nil {
		return err
	}
	if ok, err := r.storage.Exists(ctx, p); err != nil {
		return cerr.WrapStorageReadError("task", err)
	} else if !ok {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return r.write(ctx, p, t)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	p, err := path(id)
	if err != nil {
		return err
	}
	if err := r.storage.Delete(ctx, p); err != nil {
		return cerr.WrapStorageDeleteError("task", err)
	}
	return nil
}

func (r *YAMLRepository) write(ctx context.Context, p string, t *task.Task) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, p, data); err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}
