// Package core defines the internal message model shared by the pipeline.
package core

import (
	"errors"
	"fmt"
)

// ErrUnknownRole is matched by every UnknownRoleError via errors.Is.
var ErrUnknownRole = errors.New("unknown message role")

// UnknownRoleError is returned when a message carries a role outside the
// fixed set. It signals a programming error in the caller.
type UnknownRoleError struct {
	Role Role
	// Index is the position of the offending message.
	Index int
}

// Error implements the error interface
func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("message %d: %s: %q", e.Index, ErrUnknownRole.Error(), string(e.Role))
}

// Is reports whether target is ErrUnknownRole.
func (e *UnknownRoleError) Is(target error) bool {
	return target == ErrUnknownRole
}
