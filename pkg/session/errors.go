package session

import (
	"errors"
	"fmt"
)

// ErrNoPrincipal is the configuration failure for an empty principal. The
// session fails before any principal call is attempted.
var ErrNoPrincipal = errors.New("no principal configured")

// ConnectionError means the server could not be reached or the transport
// handshake did not complete.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AsConnectionError checks if an error is a ConnectionError and returns it.
func AsConnectionError(err error) (*ConnectionError, bool) {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AuthenticationError means the server rejected the credentials or the
// selected principal.
type AuthenticationError struct {
	Username  string
	Principal string
	Err       error
}

func (e *AuthenticationError) Error() string {
	if e.Principal != "" {
		return fmt.Sprintf("principal %q rejected for user %q: %v", e.Principal, e.Username, e.Err)
	}
	return fmt.Sprintf("authentication failed for user %q: %v", e.Username, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// AsAuthenticationError checks if an error is an AuthenticationError and
// returns it.
func AsAuthenticationError(err error) (*AuthenticationError, bool) {
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IncompatibleServerError means the server reported no build identifier or
// one below the minimum the client supports.
type IncompatibleServerError struct {
	Reported string
	Minimum  int
}

func (e *IncompatibleServerError) Error() string {
	if e.Reported == "" {
		return fmt.Sprintf("server reported no build identifier (minimum %d)", e.Minimum)
	}
	return fmt.Sprintf("server build %s is below the minimum %d", e.Reported, e.Minimum)
}

// AsIncompatibleServerError checks if an error is an
// IncompatibleServerError and returns it.
func AsIncompatibleServerError(err error) (*IncompatibleServerError, bool) {
	var ie *IncompatibleServerError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
