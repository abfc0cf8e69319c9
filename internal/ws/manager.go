package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle phase of the socket session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateAuthenticated
	StateReconnecting
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Event reports a state transition to the UI.
type Event struct {
	State State

	// Attempt is the reconnect attempt number while reconnecting.
	Attempt int

	// Exhausted marks the terminal condition after the reconnect cap:
	// no further automatic retries will happen and the user has to
	// reconnect manually.
	Exhausted bool
}

// AuthContext is the credential pair retained for the lifetime of a
// logical session. It lives only in process memory, from Connect
// through Disconnect.
type AuthContext struct {
	UserType string
	Token    string
}

// ErrNotConnected is returned by Send when no socket is open. Callers
// either observe connection state before sending or tolerate the drop;
// nothing is queued.
var ErrNotConnected = errors.New("ws: not connected")

// dialTimeout bounds a single connection attempt.
const dialTimeout = 15 * time.Second

// Manager owns the single WebSocket connection: lifecycle, the auth
// handshake, and the reconnection policy. No other component touches
// the socket directly.
type Manager struct {
	url    string
	dialer Dialer
	router *Router
	logger *zap.SugaredLogger

	// afterFunc schedules the reconnect timer; tests swap it out to
	// observe the backoff schedule without waiting.
	afterFunc func(time.Duration, func()) *time.Timer

	mu       sync.Mutex
	auth     *AuthContext
	conn     Conn
	gen      int
	state    State
	attempts int
	timer    *time.Timer
	events   chan Event
}

// NewManager creates a Manager for the given socket endpoint.
func NewManager(url string, dialer Dialer, router *Router, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		url:       url,
		dialer:    dialer,
		router:    router,
		logger:    logger,
		afterFunc: time.AfterFunc,
		events:    make(chan Event, 16),
	}
}

// Events returns the channel of state transition events. Events are
// dropped rather than blocking when the consumer falls behind.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect stores {userType, token} as the active auth context, tears
// down any existing socket, and opens a new one. Calling it again with
// new credentials supersedes the old session; reconnects always reuse
// the most recently stored context. The dial error, if any, is returned
// for immediate feedback, but recovery is already scheduled.
func (m *Manager) Connect(userType, token string) error {
	m.mu.Lock()
	m.auth = &AuthContext{UserType: userType, Token: token}
	m.attempts = 0
	m.cancelTimerLocked()
	m.dropConnLocked()
	m.setStateLocked(StateConnecting, 0, false)
	gen := m.gen
	auth := *m.auth
	m.mu.Unlock()

	return m.dial(gen, auth)
}

// Disconnect cancels any pending reconnect timer, closes the socket,
// and clears the auth context. No automatic reconnection happens after
// this until Connect is called again.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelTimerLocked()
	m.dropConnLocked()
	m.auth = nil
	m.attempts = 0
	m.setStateLocked(StateDisconnected, 0, false)
}

// Send transmits an envelope if the socket is open. With no open socket
// it reports ErrNotConnected; nothing is queued.
func (m *Manager) Send(v interface{}) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		m.logger.Warnw("dropping outbound message: not connected")
		return ErrNotConnected
	}
	return conn.WriteJSON(v)
}

// StartTest asks the server to begin a test session using the active
// auth token.
func (m *Manager) StartTest(testID string) error {
	token, ok := m.token()
	if !ok {
		m.logger.Warnw("start_test with no auth context", "testId", testID)
		return ErrNotConnected
	}
	return m.Send(StartTestEnvelope{Type: FrameStartTest, TestID: testID, Token: token})
}

// SubmitTest submits answers for a running test session.
func (m *Manager) SubmitTest(testID string, answers json.RawMessage) error {
	token, ok := m.token()
	if !ok {
		m.logger.Warnw("submit_test with no auth context", "testId", testID)
		return ErrNotConnected
	}
	return m.Send(SubmitTestEnvelope{
		Type:       FrameSubmitTest,
		TestID:     testID,
		AnswerData: answers,
		Token:      token,
	})
}

func (m *Manager) token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auth == nil {
		return "", false
	}
	return m.auth.Token, true
}

// dial opens a socket for the session epoch gen. A successful open
// resets the attempt counter and immediately sends the auth envelope; a
// failed one schedules the next reconnect attempt.
func (m *Manager) dial(gen int, auth AuthContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := m.dialer.Dial(ctx, m.url)

	m.mu.Lock()
	if gen != m.gen || m.auth == nil {
		// Superseded by a newer Connect or a Disconnect while dialing.
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return nil
	}

	if err != nil {
		m.logger.Warnw("socket dial failed", "url", m.url, "error", err)
		m.scheduleReconnectLocked()
		m.mu.Unlock()
		return err
	}

	m.conn = conn
	m.attempts = 0
	m.setStateLocked(StateConnected, 0, false)
	m.mu.Unlock()

	if err := conn.WriteJSON(AuthEnvelope{
		Type:     FrameAuth,
		UserType: auth.UserType,
		Token:    auth.Token,
	}); err != nil {
		m.logger.Warnw("sending auth envelope", "error", err)
	}

	go m.readLoop(conn, gen)
	return nil
}

// readLoop feeds inbound frames to the router until the socket dies.
func (m *Manager) readLoop(conn Conn, gen int) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(gen)
			return
		}

		env, ok := m.router.Dispatch(data)
		if !ok {
			continue
		}

		if env.Type == FrameAuthSuccess {
			m.mu.Lock()
			if gen == m.gen && m.state == StateConnected {
				m.setStateLocked(StateAuthenticated, 0, false)
			}
			m.mu.Unlock()
		}
	}
}

// handleClose reacts to the socket closing. A stale epoch (a session
// already superseded) is ignored so an old connection's close can never
// trigger a duplicate reconnect.
func (m *Manager) handleClose(gen int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}

	m.dropConnLocked()

	if m.auth == nil {
		m.setStateLocked(StateDisconnected, 0, false)
		return
	}
	m.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the backoff timer for the next attempt,
// or surfaces the exhausted condition once the cap is reached. The
// caller holds m.mu.
func (m *Manager) scheduleReconnectLocked() {
	next := m.attempts + 1
	if next > maxReconnectAttempts {
		m.logger.Warnw("reconnect attempts exhausted", "attempts", m.attempts)
		m.setStateLocked(StateDisconnected, m.attempts, true)
		return
	}

	m.attempts = next
	delay := ReconnectDelay(next)
	m.setStateLocked(StateReconnecting, next, false)
	m.logger.Infow("scheduling reconnect", "attempt", next, "delay", delay)

	gen := m.gen
	m.timer = m.afterFunc(delay, func() {
		m.redial(gen)
	})
}

// redial runs when the backoff timer fires. It reuses whatever auth
// context is current at fire time, not the one from the original
// Connect call.
func (m *Manager) redial(gen int) {
	m.mu.Lock()
	if gen != m.gen || m.auth == nil {
		m.mu.Unlock()
		return
	}
	auth := *m.auth
	m.setStateLocked(StateConnecting, m.attempts, false)
	m.mu.Unlock()

	m.dial(gen, auth)
}

// dropConnLocked closes the current socket and advances the session
// epoch, invalidating any read loop or pending redial tied to it.
func (m *Manager) dropConnLocked() {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.gen++
}

func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) setStateLocked(s State, attempt int, exhausted bool) {
	m.state = s
	select {
	case m.events <- Event{State: s, Attempt: attempt, Exhausted: exhausted}:
	default:
		// Drop if the UI is not draining; state remains queryable.
	}
}
