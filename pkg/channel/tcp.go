package channel

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/scriptsync/scriptsync/internal/metrics"
	"github.com/scriptsync/scriptsync/pkg/logging"
	"github.com/scriptsync/scriptsync/pkg/protocol"
)

// clientMagic identifies the client's protocol revision in the handshake.
const clientMagic = "scriptsync/1"

// request is one call frame on the wire.
type request struct {
	Op     string   `json:"op"`
	Params []string `json:"params,omitempty"`
}

// response is one result frame. A non-empty Error means the server
// rejected the call; Result is the tuple otherwise.
type response struct {
	Error  string   `json:"error,omitempty"`
	Result []string `json:"result,omitempty"`
}

// TCPChannel is the production Channel over a plain TCP connection with
// newline-delimited JSON frames. Calls are serialized; the per-call
// deadline comes from the session timeout.
type TCPChannel struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// Dial connects to addr, performs the protocol handshake and returns a
// ready channel. The timeout bounds the dial, the handshake and every
// subsequent call. No retry is attempted; a failed dial fails the session.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*TCPChannel, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	ch := &TCPChannel{
		conn:    conn,
		r:       bufio.NewReader(conn),
		timeout: timeout,
	}

	banner, err := ch.Call(ctx, protocol.OpHello, clientMagic)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}
	if len(banner) == 0 || banner[0] == "" {
		ch.Close()
		return nil, fmt.Errorf("handshake: no server banner")
	}
	logging.Debug("channel connected",
		logging.String("addr", addr),
		logging.String("banner", banner[0]))

	return ch, nil
}

// Call sends one request frame and waits for the matching response. The
// channel carries no multiplexing; calls are strictly one at a time.
func (c *TCPChannel) Call(ctx context.Context, op string, params ...string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	result, err := c.roundTrip(ctx, op, params)
	metrics.ObserveCall(op, time.Since(start), err)
	return result, err
}

func (c *TCPChannel) roundTrip(ctx context.Context, op string, params []string) ([]string, error) {
	if c.closed {
		return nil, ErrClosed
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	frame, err := json.Marshal(request{Op: op, Params: params})
	if err != nil {
		return nil, err
	}
	frame = append(frame, '\n')
	if _, err := c.conn.Write(frame); err != nil {
		return nil, fmt.Errorf("%s: send: %w", op, err)
	}

	line, err := c.r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%s: receive: %w", op, err)
	}

	var resp response
	if err := json.Unmarshal([]byte(strings.TrimRight(line, "\n")), &resp); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	if resp.Error != "" {
		return nil, &CallError{Op: op, Message: resp.Error}
	}
	return resp.Result, nil
}

// Close shuts the connection down. The first close wins; later closes
// return nil.
func (c *TCPChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
