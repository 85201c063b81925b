// Package datastore opens the configured persistence backend and exposes
// the user and task repositories on top of it.
package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kazz187/pomofocus/internal/config"
	"github.com/kazz187/pomofocus/internal/task"
	taskrepo "github.com/kazz187/pomofocus/internal/task/repositoryimpl"
	"github.com/kazz187/pomofocus/internal/user"
	userrepo "github.com/kazz187/pomofocus/internal/user/repositoryimpl"
	"github.com/kazz187/pomofocus/pkg/storage"
)

type Store struct {
	Users user.Repository
	Tasks task.Repository

	closeFn func() error
}

func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Open builds the store selected by env.Type: "sqlite" (default), "local"
// for YAML files on disk, or "s3" for YAML objects in a bucket.
func Open(ctx context.Context, env *config.StoreEnv) (*Store, error) {
	switch env.Type {
	case "", "sqlite":
		db, err := OpenSQLite(env.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db), nil
	case "s3":
		s, err := storage.NewS3Storage(ctx, storage.S3Options{
			Bucket:   env.S3Bucket,
			Prefix:   env.S3Prefix,
			Region:   env.S3Region,
			Endpoint: env.S3Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return NewYAMLStore(s), nil
	case "local":
		s, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return NewYAMLStore(s), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", env.Type)
	}
}

func NewYAMLStore(s storage.Storage) *Store {
	return &Store{
		Users: userrepo.NewYAMLRepository(s),
		Tasks: taskrepo.NewYAMLRepository(s),
	}
}

func NewSQLiteStore(db *sql.DB) *Store {
	return &Store{
		Users:   userrepo.NewSQLiteRepository(db),
		Tasks:   taskrepo.NewSQLiteRepository(db),
		closeFn: db.Close,
	}
}

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	email      TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id                  TEXT PRIMARY KEY,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	completed           INTEGER NOT NULL DEFAULT 0,
	user_email          TEXT NOT NULL,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL,
	estimated_pomodoros INTEGER NOT NULL DEFAULT 1 CHECK (estimated_pomodoros >= 1),
	completed_pomodoros INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks(user_email, created_at DESC);
`

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("datastore: create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("datastore: open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("datastore: pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("datastore: migration: %w", err)
	}
	return db, nil
}
