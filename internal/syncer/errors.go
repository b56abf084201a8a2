package syncer

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBatch  = errors.New("refusing to sync an empty batch")
	ErrNoStatement = errors.New("sql statement not configured")
	// ErrUnscoped is returned by UpdateType and DeleteByType when no warning
	// type id is configured.
	ErrUnscoped = errors.New("warn_type_id not configured; statements are not type-scoped")
)

// StorageError reports a failed step of a storage operation. The
// transaction it belonged to has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
