package repositoryimpl_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/pomofocus/internal/datastore"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/internal/task/repositoryimpl"
	"github.com/kazz187/pomofocus/pkg/cerr"
	"github.com/kazz187/pomofocus/internal/user"
	userrepo "github.com/kazz187/pomofocus/internal/user/repositoryimpl"
	"github.com/kazz187/pomofocus/pkg/storage"
)

func repositories(t *testing.T) map[string]task.Repository {
	t.Helper()
	db, err := datastore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	return map[string]task.Repository{
		"sqlite": repositoryimpl.NewSQLiteRepository(db),
		"yaml":   repositoryimpl.NewYAMLRepository(local),
	}
}

func TestRepository(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			older := &task.Task{Title: "older", EstimatedPomodoros: 1, UserEmail: "a@x.com", CreatedAt: base, UpdatedAt: base}
			newer := &task.Task{Title: "newer", Description: "d", EstimatedPomodoros: 3, UserEmail: "a@x.com",
				CreatedAt: base.Add(500 * time.Millisecond), UpdatedAt: base.Add(500 * time.Millisecond)}
			other := &task.Task{Title: "other", EstimatedPomodoros: 1, UserEmail: "b@x.com", CreatedAt: base, UpdatedAt: base}
			for _, tk := range []*task.Task{older, newer, other} {
				require.NoError(t, repo.Create(ctx, tk))
				assert.NotEmpty(t, tk.ID)
			}

			got, err := repo.Get(ctx, newer.ID)
			require.NoError(t, err)
			assert.Equal(t, "newer", got.Title)
			assert.Equal(t, "d", got.Description)
			assert.Equal(t, 3, got.EstimatedPomodoros)
			assert.True(t, newer.CreatedAt.Equal(got.CreatedAt))

			list, err := repo.ListByOwner(ctx, "a@x.com")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, newer.ID, list[0].ID)
			assert.Equal(t, older.ID, list[1].ID)

			got.Completed = true
			got.UpdatedAt = base.Add(time.Hour)
			require.NoError(t, repo.Update(ctx, got))
			reread, err := repo.Get(ctx, newer.ID)
			require.NoError(t, err)
			assert.True(t, reread.Completed)
			assert.True(t, got.UpdatedAt.Equal(reread.UpdatedAt))

			require.NoError(t, repo.Delete(ctx, older.ID))
			_, err = repo.Get(ctx, older.ID)
			assert.True(t, cerr.IsCode(err, cerr.NotFound))
			assert.True(t, cerr.IsCode(repo.Delete(ctx, older.ID), cerr.NotFound))
			assert.True(t, cerr.IsCode(repo.Update(ctx, &task.Task{ID: "missing"}), cerr.NotFound))

			empty, err := repo.ListByOwner(ctx, "nobody@x.com")
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestYAMLRepositoryRejectsIDsOutsideTasks(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	users := userrepo.NewYAMLRepository(local)
	tasks := repositoryimpl.NewYAMLRepository(local)

	require.NoError(t, users.Create(ctx, &user.User{Email: "ann@example.com", Name: "Ann", CreatedAt: time.Now()}))

	for _, id := range []string{"../users/ann@example.com", "..", "a/b", "missing"} {
		_, err := tasks.Get(ctx, id)
		assert.True(t, cerr.IsCode(err, cerr.NotFound), id)
		assert.True(t, cerr.IsCode(tasks.Delete(ctx, id), cerr.NotFound), id)
		assert.True(t, cerr.IsCode(tasks.Update(ctx, &task.Task{ID: id, Title: "x"}), cerr.NotFound), id)
	}
	err = tasks.Create(ctx, &task.Task{ID: "../users/ann@example.com", Title: "x"})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	u, err := users.Get(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
}
