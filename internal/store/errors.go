package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for item text that is empty after trimming.
	ErrInvalidInput = errors.New("invalid input: empty text")

	// ErrStorage matches every *StorageError via errors.Is.
	ErrStorage = errors.New("storage failure")

	// ErrMalformedData means a persisted value exists but is not a list of
	// {id, text, completed} records. Restore treats it as no prior data.
	ErrMalformedData = errors.New("malformed persisted data")
)

// StorageError wraps a backend read or write failure.
type StorageError struct {
	Op  string // "read" | "write"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
