// Package session drives the lifecycle of one authenticated connection to
// the document server: connect, authenticate, select the principal, verify
// the server build, run one batch operation, close. Every session owns
// exactly one channel and releases it exactly once, whatever happens.
package session

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/scriptsync/scriptsync/internal/metrics"
	"github.com/scriptsync/scriptsync/pkg/channel"
	"github.com/scriptsync/scriptsync/pkg/logging"
	"github.com/scriptsync/scriptsync/pkg/models"
	"github.com/scriptsync/scriptsync/pkg/protocol"
)

// State is one step of the session lifecycle. Transitions run strictly
// forward; any failure jumps to Closing.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateAuthenticating
	StateAuthenticated
	StateSelectingPrincipal
	StatePrincipalSelected
	StateVerifyingVersion
	StateReady
	StateClosing
	StateClosed
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateConnecting:         "connecting",
	StateConnected:          "connected",
	StateAuthenticating:     "authenticating",
	StateAuthenticated:      "authenticated",
	StateSelectingPrincipal: "selecting-principal",
	StatePrincipalSelected:  "principal-selected",
	StateVerifyingVersion:   "verifying-version",
	StateReady:              "ready",
	StateClosing:            "closing",
	StateClosed:             "closed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Operation is one batch operation run over a ready channel. It receives
// the login data so it can consult session facts such as the server build.
type Operation func(ctx context.Context, ch channel.Channel, login *models.LoginData) ([]*models.Script, error)

// Dialer opens the channel for a session. Tests substitute it; production
// code uses the TCP dialer.
type Dialer func(ctx context.Context, addr string, login *models.LoginData) (channel.Channel, error)

// TCPDialer opens a TCPChannel with the login's timeout.
func TCPDialer(ctx context.Context, addr string, login *models.LoginData) (channel.Channel, error) {
	return channel.Dial(ctx, addr, login.EffectiveTimeout())
}

// Manager runs sessions. The zero value is not usable; use New.
type Manager struct {
	dial  Dialer
	state State
}

// New returns a manager using the production TCP dialer.
func New() *Manager {
	return NewWithDialer(TCPDialer)
}

// NewWithDialer returns a manager with a custom dialer.
func NewWithDialer(dial Dialer) *Manager {
	return &Manager{dial: dial, state: StateIdle}
}

// State returns the manager's current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

func (m *Manager) transition(s State) {
	logging.Debug("session state",
		logging.String("from", m.state.String()),
		logging.String("to", s.String()))
	m.state = s
}

// Run establishes one session, invokes op over the ready channel and
// closes the channel before returning.
//
// Failure handling is asymmetric on purpose: when op fails, a subsequent
// close failure is discarded and op's failure is surfaced, because it is
// the more actionable diagnostic. When op succeeds and close fails, the
// close failure is surfaced instead of the success.
func (m *Manager) Run(ctx context.Context, login *models.LoginData, op Operation) (scripts []*models.Script, err error) {
	defer func() { metrics.ObserveSession(err) }()

	addr := net.JoinHostPort(login.Server, strconv.Itoa(login.Port))

	m.transition(StateConnecting)
	ch, dialErr := m.dial(ctx, addr, login)
	if dialErr != nil {
		m.transition(StateClosing)
		m.transition(StateClosed)
		return nil, &ConnectionError{Addr: addr, Err: dialErr}
	}
	m.transition(StateConnected)

	scripts, err = m.runOverChannel(ctx, ch, login, op)

	m.transition(StateClosing)
	closeErr := ch.Close()
	m.transition(StateClosed)

	if err != nil {
		if closeErr != nil {
			logging.Debug("discarding close failure after failed operation",
				logging.Err(closeErr))
		}
		// Scripts processed before the failure are handed back; partial
		// server-side effects are never rolled back.
		return scripts, err
	}
	if closeErr != nil {
		return scripts, fmt.Errorf("closing session: %w", closeErr)
	}
	return scripts, nil
}

// runOverChannel performs the post-connect handshake steps and the
// operation itself. The caller owns channel cleanup.
func (m *Manager) runOverChannel(ctx context.Context, ch channel.Channel, login *models.LoginData, op Operation) ([]*models.Script, error) {
	m.transition(StateAuthenticating)
	res, err := ch.Call(ctx, protocol.OpChangeUser, login.Username, login.Password)
	if err != nil {
		return nil, &AuthenticationError{Username: login.Username, Err: err}
	}
	if len(res) > 0 {
		login.UserID = res[0]
	}
	if len(res) > 1 && res[1] != "" {
		login.LastWarning = res[1]
		logging.Warn("server advisory", logging.String("message", res[1]))
	}
	m.transition(StateAuthenticated)

	if login.Principal == "" {
		return nil, ErrNoPrincipal
	}
	m.transition(StateSelectingPrincipal)
	if _, err := ch.Call(ctx, protocol.OpChangePrincipal, login.Principal); err != nil {
		return nil, &AuthenticationError{Username: login.Username, Principal: login.Principal, Err: err}
	}
	m.transition(StatePrincipalSelected)

	m.transition(StateVerifyingVersion)
	res, err = ch.Call(ctx, protocol.OpGetServerVersion)
	if err != nil {
		return nil, fmt.Errorf("version probe: %w", err)
	}
	version := ""
	if len(res) > 0 {
		version = res[0]
	}
	build, ok := protocol.ParseBuild(version)
	if !ok || build < protocol.MinServerBuild {
		return nil, &IncompatibleServerError{Reported: version, Minimum: protocol.MinServerBuild}
	}
	login.ServerVersion = version
	m.transition(StateReady)

	logging.Info("session ready",
		logging.String("user", login.Username),
		logging.String("principal", login.Principal),
		logging.String("build", version))

	return op(ctx, ch, login)
}

// Run is the package-level convenience for a one-shot session.
func Run(ctx context.Context, login *models.LoginData, op Operation) ([]*models.Script, error) {
	return New().Run(ctx, login, op)
}
