package types

import (
	"errors"
	"fmt"
)

// Relationship resolution errors.
var (
	ErrUnresolvableEntityClass = errors.New("entity class has no resolvable family")
	ErrTypeMismatch            = errors.New("source and target entity families are incompatible")
	ErrInvalidFilter           = errors.New("invalid filter")
	ErrExternalStore           = errors.New("external store failure")
)

// Record operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)

// Post type errors.
var (
	ErrNonExistentPostType = errors.New("post type does not exist")
	ErrPostTypeExists      = errors.New("post type already registered")
	ErrInvalidSlug         = errors.New("invalid slug")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// StoreError wraps a failure reported by the host store. errors.Is matches
// both ErrExternalStore and the wrapped cause, so callers can still detect
// ErrNotFound through a StoreError.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err for the named store operation. A nil err stays nil.
// Errors that are already a StoreError, and record errors the store reports
// about its input (ErrNotFound, ErrInvalidID, ErrInvalidData, ErrInvalidFilter),
// are returned unchanged.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	for _, sentinel := range passThrough {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}

// passThrough lists errors NewStoreError never wraps.
var passThrough = []error{ErrNotFound, ErrInvalidID, ErrInvalidData, ErrInvalidFilter}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports ErrExternalStore as a match for every StoreError.
func (e *StoreError) Is(target error) bool {
	return target == ErrExternalStore
}
