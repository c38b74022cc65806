package gateway

import (
	"errors"
	"fmt"
)

// ErrDeleteNotConfirmed is returned when a delete request arrives without the
// explicit confirmation step.
var ErrDeleteNotConfirmed = errors.New("delete requires explicit confirmation")

// ValidationError reports a missing or malformed form field. It is resolved
// locally and never reaches the remote collection.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Message)
}

// SaveError wraps a transport failure on create or update. The submitted form
// state is untouched; the caller may resubmit.
type SaveError struct {
	Op  string // "create" or "update"
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to %s product: %v", e.Op, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// DeleteError wraps a transport failure on delete.
type DeleteError struct {
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("failed to delete product: %v", e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }
