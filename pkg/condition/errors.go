package condition

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingOption is matched by every *MissingOptionError.
	ErrMissingOption = errors.New("condition: missing required option")

	// ErrInvalidOption reports an option that is present but unusable.
	ErrInvalidOption = errors.New("condition: invalid option")

	// ErrUnknownCondition is returned by Registry.Build for unregistered names.
	ErrUnknownCondition = errors.New("condition: unknown condition")
)

// MissingOptionError reports a condition constructed without one of its
// required options.
type MissingOptionError struct {
	Condition string
	Option    string
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("condition: %s requires option %q", e.Condition, e.Option)
}

// Is allows errors.Is(err, ErrMissingOption).
func (e *MissingOptionError) Is(target error) bool {
	return target == ErrMissingOption
}
