package form

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperation is matched by every *InvalidOperationError.
	ErrInvalidOperation = errors.New("form: invalid operation")

	// ErrImmutableState is matched by every *ImmutableStateError.
	ErrImmutableState = errors.New("form: immutable state")

	ErrNameRequired      = errors.New("form: name is required")
	ErrTypeRequired      = errors.New("form: field type is required")
	ErrNilElement        = errors.New("form: element is nil")
	ErrAlreadyAttached   = errors.New("form: element already has a parent")
	ErrCycle             = errors.New("form: element cannot contain itself")
	ErrDuplicateField    = errors.New("form: duplicate field name")
	ErrUnknownConstraint = errors.New("form: unknown constraint")
)

// InvalidOperationError reports an attempt to change an attribute that is
// fixed by the field's kind, such as the type of a captcha field.
type InvalidOperationError struct {
	Field     string
	Operation string
	Reason    string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("form: %s on field %q is not allowed: %s", e.Operation, e.Field, e.Reason)
}

func (e *InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

// ImmutableStateError reports a mutation attempted after the owning form was
// finalized.
type ImmutableStateError struct {
	Target    string
	Operation string
}

func (e *ImmutableStateError) Error() string {
	return fmt.Sprintf("form: cannot %s %s: form is finalized", e.Operation, e.Target)
}

func (e *ImmutableStateError) Is(target error) bool {
	return target == ErrImmutableState
}
