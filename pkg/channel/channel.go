// Package channel implements the session-oriented remote procedure channel
// to the document server. A channel carries named calls with positional
// string arguments and returns string tuples; the encoding underneath is
// an implementation detail no caller depends on.
package channel

import (
	"context"
	"errors"
	"fmt"
)

// Channel is an open bidirectional connection supporting named remote
// procedure calls. Exactly one channel is alive per session and no two
// calls are ever in flight concurrently.
type Channel interface {
	// Call invokes the named operation and waits for its result tuple.
	Call(ctx context.Context, op string, params ...string) ([]string, error)

	// Close releases the connection. Closing twice is harmless.
	Close() error
}

// ErrClosed is returned by Call after the channel has been closed.
var ErrClosed = errors.New("channel is closed")

// CallError is a failure reported by the server for one call. Transport
// failures are returned as-is, not wrapped in CallError.
type CallError struct {
	Op      string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// AsCallError checks if an error is a CallError and returns it.
func AsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
