package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/school-dashboard/internal/model"
)

// Router classifies inbound JSON frames and fans them out. A parse
// failure is logged and dropped; the connection is never torn down over
// a bad frame.
type Router struct {
	mu sync.Mutex

	logger *zap.SugaredLogger

	// lastMsg is the most recently parsed frame, any type. Transient
	// request/response flows (test start/submit acks) watch it.
	lastMsg *Envelope

	// unknownFrames counts frames whose type the router does not
	// interpret, for observability.
	unknownFrames int

	notifyFns []func(model.Notification)
	frameFns  []func(Envelope)
}

// NewRouter creates a Router that logs through the given logger.
func NewRouter(logger *zap.SugaredLogger) *Router {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Router{logger: logger}
}

// OnNotification registers fn to receive every pushed notification.
func (r *Router) OnNotification(fn func(model.Notification)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifyFns = append(r.notifyFns, fn)
}

// OnFrame registers fn to observe every successfully parsed frame,
// regardless of type.
func (r *Router) OnFrame(fn func(Envelope)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frameFns = append(r.frameFns, fn)
}

// Dispatch parses a raw inbound frame and fans it out. It returns the
// decoded envelope and whether parsing succeeded.
func (r *Router) Dispatch(data []byte) (Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Warnw("dropping malformed frame", "error", err)
		return Envelope{}, false
	}

	r.mu.Lock()
	envCopy := env
	r.lastMsg = &envCopy
	if !knownInbound(env.Type) {
		r.unknownFrames++
		r.logger.Infow("unrecognized frame type", "type", env.Type)
	}
	notifyFns := r.notifyFns
	frameFns := r.frameFns
	r.mu.Unlock()

	for _, fn := range frameFns {
		fn(env)
	}

	if env.Type == FrameNewNotification && env.Notification != nil {
		for _, fn := range notifyFns {
			fn(*env.Notification)
		}
	}

	return env, true
}

// LastMessage returns the most recently parsed frame, or nil if none
// has arrived yet.
func (r *Router) LastMessage() *Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastMsg == nil {
		return nil
	}
	msg := *r.lastMsg
	return &msg
}

// UnknownFrameCount returns how many uninterpreted frame types have
// been received on this router.
func (r *Router) UnknownFrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unknownFrames
}
