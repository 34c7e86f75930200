package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURI is matched by errors returned when a store rejects a URI.
	ErrInvalidURI = errors.New("invalid URI")

	// ErrNotFound is matched by errors returned when a valid key has no value.
	ErrNotFound = errors.New("not found in store")

	// ErrInvalidData is matched by errors returned when data read from or
	// written to a content-addressed store does not hash to its key.
	// Every error matching ErrInvalidData also matches ErrNotFound.
	ErrInvalidData = errors.New("invalid data found")

	// ErrNotAvailable is matched by errors returned when a storage backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrNotAvailable = errors.New("store not available")

	// ErrNotImplemented is matched by errors returned when an optional
	// operation is not supported by a store.
	ErrNotImplemented = errors.New("not implemented")
)

// InvalidURIError reports a URI rejected by a store's validity check.
type InvalidURIError struct {
	Store string
	URI   string
	Hint  string
}

func (e *InvalidURIError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("URI '%s' is invalid for %s", e.URI, e.Store)
	}
	return fmt.Sprintf("URI '%s' is invalid for %s (hint: %s)", e.URI, e.Store, e.Hint)
}

func (e *InvalidURIError) Is(target error) bool {
	return target == ErrInvalidURI
}

// NotFoundError reports a valid key absent from a store.
// Err optionally holds the error of an underlying store.
type NotFoundError struct {
	Store string
	URI   string
	Err   error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s does not contain '%s'", e.Store, e.URI)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// InvalidDataError reports data whose hash does not match its content address.
type InvalidDataError struct {
	Store string
	Key   string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("%s found invalid data for '%s'", e.Store, e.Key)
}

func (e *InvalidDataError) Is(target error) bool {
	return target == ErrInvalidData || target == ErrNotFound
}

// NotAvailableError reports a backend that cannot be reached.
type NotAvailableError struct {
	Store string
	Err   error
}

func (e *NotAvailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s is not available", e.Store)
	}
	return fmt.Sprintf("%s is not available: %v", e.Store, e.Err)
}

func (e *NotAvailableError) Is(target error) bool {
	return target == ErrNotAvailable
}

func (e *NotAvailableError) Unwrap() error {
	return e.Err
}

// NotImplementedError reports an optional operation a store does not support.
type NotImplementedError struct {
	Store string
	Op    string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s does not implement the '%s' method", e.Store, e.Op)
}

func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}
