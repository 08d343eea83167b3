package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterval   = errors.New("invalid interval")
	ErrConflict          = errors.New("schedule conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	// ErrStaleState is returned by conditional writes that matched no row
	// because the entity changed after it was read.
	ErrStaleState = errors.New("stale state")
)

// ConflictError reports the busy entity that blocks a proposed interval.
type ConflictError struct {
	Entity   EntityRef
	Interval TimeInterval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict with %s at %s", e.Entity, e.Interval)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// TransitionError reports a state machine violation.
type TransitionError struct {
	Entity EntityType
	From   string
	Event  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s %s in status %q", e.Event, e.Entity, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NotFoundError wraps ErrNotFound with the missing entity.
func NotFoundError(entity EntityType, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}
