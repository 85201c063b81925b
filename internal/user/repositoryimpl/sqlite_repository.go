package repositoryimpl

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kazz187/pomofocus/internal/user"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, email string) (*user.User, error) {
	var (
		u         user.User
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT email, name, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.Email, &u.Name, &createdAt)
	if err != nil {
		return nil, cerr.WrapDatabaseError("read", "user", err)
	}
	u.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &u, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, created_at) VALUES (?, ?, ?)`,
		u.Email, u.Name, u.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return cerr.NewError(cerr.AlreadyExists, "user already exists", err)
		}
		return cerr.WrapDatabaseError("write", "user", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateName(ctx context.Context, email, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE email = ?`, name, email)
	if err != nil {
		return cerr.WrapDatabaseError("write", "user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	return nil
}
