package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrUpstream is matched by failures listing a primary collection.
	ErrUpstream = errors.New("upstream failure")
	// ErrAuthRequired is returned when no credentials are available.
	ErrAuthRequired = errors.New("not authenticated")
)

// NotFoundError reports a named lookup that found no match.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' does not exist", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UpstreamError wraps a remote failure that aborts a whole aggregation.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
