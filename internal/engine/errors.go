package engine

import "fmt"

// ValidationError is returned for rejected user input. No state is changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Kind string
	ID   any
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

// StateError indicates an operation that is not allowed in the current state,
// e.g. completing an abandoned task.
type StateError struct {
	Op     string
	Reason string
}

func (e StateError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Op, e.Reason)
}

type AvatarTooLargeError struct {
	Size  int
	Limit int
}

func (e AvatarTooLargeError) Error() string {
	return fmt.Sprintf("avatar is %d bytes; the limit is %d bytes", e.Size, e.Limit)
}

// ImportError is returned when a snapshot document is rejected.
type ImportError struct {
	Reason string
}

func (e ImportError) Error() string {
	return "import rejected: " + e.Reason
}
