package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoDriver is returned when Fill has no driver to ask through.
	ErrNoDriver = errors.New("prompt: driver is nil")
)
