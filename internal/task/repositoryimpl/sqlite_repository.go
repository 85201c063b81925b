package repositoryimpl

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

// timeLayout is fixed-width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const taskColumns = `id, title, description, completed, user_email, created_at, updated_at, estimated_pomodoros, completed_pomodoros`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t                    task.Task
		completed            int
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &completed, &t.UserEmail,
		&createdAt, &updatedAt, &t.EstimatedPomodoros, &t.CompletedPomodoros); err != nil {
		return nil, err
	}
	t.Completed = completed != 0
	t.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	t.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRepository) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = ulid.Make().String()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, boolInt(t.Completed), t.UserEmail,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt), t.EstimatedPomodoros, t.CompletedPomodoros,
	)
	if err != nil {
		return cerr.WrapDatabaseError("write", "task", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, cerr.WrapDatabaseError("read", "task", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, userEmail string) ([]*task.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_email = ? ORDER BY created_at DESC, id DESC`, userEmail)
	if err != nil {
		return nil, cerr.WrapDatabaseError("read", "tasks", err)
	}
	defer rows.Close()

	var out []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, cerr.WrapDatabaseError("read", "tasks", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, cerr.WrapDatabaseError("read", "tasks", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, t *task.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ?,
			estimated_pomodoros = ?, completed_pomodoros = ?
		WHERE id = ?`,
		t.Title, t.Description, boolInt(t.Completed), formatTime(t.UpdatedAt),
		t.EstimatedPomodoros, t.CompletedPomodoros, t.ID,
	)
	if err != nil {
		return cerr.WrapDatabaseError("write", "task", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return cerr.WrapDatabaseError("delete", "task", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}
