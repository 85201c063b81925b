package repositoryimpl_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/pomofocus/internal/datastore"
	"github.com/kazz187/pomofocus/internal/user"
	"github.com/kazz187/pomofocus/internal/user/repositoryimpl"
	"github.com/kazz187/pomofocus/pkg/cerr"
	"github.com/kazz187/pomofocus/pkg/storage"
)

func TestRepository(t *testing.T) {
	db, err := datastore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	repos := map[string]user.Repository{
		"sqlite": repositoryimpl.NewSQLiteRepository(db),
		"yaml":   repositoryimpl.NewYAMLRepository(local),
	}
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.Get(ctx, "ann@example.com")
			assert.True(t, cerr.IsCode(err, cerr.NotFound))

			require.NoError(t, repo.Create(ctx, &user.User{Email: "ann@example.com", Name: "Ann", CreatedAt: created}))
			err = repo.Create(ctx, &user.User{Email: "ann@example.com", Name: "Other", CreatedAt: created})
			assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

			require.NoError(t, repo.UpdateName(ctx, "ann@example.com", "Annie"))
			u, err := repo.Get(ctx, "ann@example.com")
			require.NoError(t, err)
			assert.Equal(t, "Annie", u.Name)
			assert.True(t, created.Equal(u.CreatedAt))

			assert.True(t, cerr.IsCode(repo.UpdateName(ctx, "nobody@example.com", "x"), cerr.NotFound))
		})
	}
}
