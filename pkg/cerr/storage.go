package cerr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/kazz187/pomofocus/pkg/storage"
)

// notFoundOr returns NotFound when err says the record is missing and an
// Internal "failed to <op> <target>" otherwise.
func notFoundOr(op, target string, err error) error {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return NewError(NotFound, target+" not found", err)
	}
	return NewError(Internal, fmt.Sprintf("failed to %s %s", op, target), err)
}

func WrapStorageReadError(target string, err error) error {
	return notFoundOr("read", target, err)
}

func WrapStorageWriteError(target string, err error) error {
	return NewError(Internal, "failed to write "+target, err)
}

func WrapStorageDeleteError(target string, err error) error {
	return notFoundOr("delete", target, err)
}

// WrapDatabaseError is the database/sql counterpart, with op naming the
// statement ("insert", "update", ...).
func WrapDatabaseError(op, target string, err error) error {
	return notFoundOr(op, target, err)
}
