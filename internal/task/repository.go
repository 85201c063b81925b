package task

import "context"

type Repository interface {
	// Create stores t, assigning t.ID when it is empty.
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	// ListByOwner returns the tasks of one owner, newest first.
	ListByOwner(ctx context.Context, userEmail string) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
