package repositoryimpl

import (
	"context"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/pomofocus/internal/user"
	"github.com/kazz187/pomofocus/pkg/cerr"
	"github.com/kazz187/pomofocus/pkg/storage"
)

const usersPrefix = "users"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(email string) string {
	return fmt.Sprintf("%s/%s.yaml", usersPrefix, url.PathEscape(email))
}

func (r *YAMLRepository) Get(ctx context.Context, email string) (*user.User, error) {
	data, err := r.storage.Read(ctx, path(email))
	if err != nil {
		return nil, cerr.WrapStorageReadError("user", err)
	}
	var u user.User
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal user: %w", err))
	}
	return &u, nil
}

func (r *YAMLRepository) Create(ctx context.Context, u *user.User) error {
	exists, err := r.storage.Exists(ctx, path(u.Email))
	if err != nil {
		return cerr.WrapStorageWriteError("user", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "user already exists", nil)
	}
	return r.write(ctx, u)
}

func (r *YAMLRepository) UpdateName(ctx context.Context, email, name string) error {
	u, err := r.Get(ctx, email)
	if err != nil {
		return err
	}
	u.Name = name
	return r.write(ctx, u)
}

func (r *YAMLRepository) write(ctx context.Context, u *user.User) error {
	data, err := yaml.Marshal(u)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal user: %w", err))
	}
	if err := r.storage.Write(ctx, path(u.Email), data); err != nil {
		return cerr.WrapStorageWriteError("user", err)
	}
	return nil
}
