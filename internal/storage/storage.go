// Package storage holds the error type shared by the store backends.
package storage

import "fmt"

// Error wraps a store collaborator failure (network, permission, decode).
// Repositories surface it to the caller immediately and never retry.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns a *Error unless err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
