package repository

import (
	"errors"
	"fmt"
)

// Common repository errors
var (
	// ErrTaskNotFound is returned when no task has the requested id
	ErrTaskNotFound = errors.New("task not found")
)

// StoreError wraps a failure of the underlying database.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
