package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is matched by every *ValidationError via errors.Is.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrNetworkUnreachable marks a write that never reached the service.
	// It is the only failure that sends a write to the offline queue.
	ErrNetworkUnreachable = errors.New("network unreachable")
)

// ValidationError reports a malformed record rejected before aggregation.
type ValidationError struct {
	Kind   string // "water", "weight", "fasting"
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s record: %s %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s record %s: %s %s", e.Kind, e.ID, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRecord
}

// Invalid builds a ValidationError.
func Invalid(kind, id, field, reason string) error {
	return &ValidationError{Kind: kind, ID: id, Field: field, Reason: reason}
}
