package sync

import (
	"errors"
	"fmt"
)

// NotFoundError means the server holds no script under the given name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("script %q not found on server", e.Name)
}

// AsNotFound checks if an error is a NotFoundError and returns it.
func AsNotFound(err error) (*NotFoundError, bool) {
	var ne *NotFoundError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// PermissionDeniedError means the script is encrypted on the server and
// the client has no permission to decrypt it. This is the only error class
// a batch policy may swallow.
type PermissionDeniedError struct {
	Name string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("no permission to decrypt script %q", e.Name)
}

// IsPermissionDenied reports whether err is a PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var pe *PermissionDeniedError
	return errors.As(err, &pe)
}
