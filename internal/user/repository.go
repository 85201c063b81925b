package user

import "context"

type Repository interface {
	// Get returns a cerr NotFound error when no user has the email.
	Get(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateName(ctx context.Context, email, name string) error
}
