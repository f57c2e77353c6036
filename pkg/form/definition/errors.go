package definition

import (
	"errors"
	"fmt"
)

// ErrInvalidDefinition is matched by every *Error.
var ErrInvalidDefinition = errors.New("definition: invalid form definition")

// Error locates a construction failure within a definition file.
type Error struct {
	Source string
	// Path is a JSON-pointer-like location such as "elements[1].children[0]".
	Path string
	Err  error
}

func (e *Error) Error() string {
	location := e.Path
	if e.Source != "" {
		location = e.Source + ": " + location
	}
	return fmt.Sprintf("definition: %s: %v", location, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrInvalidDefinition }
