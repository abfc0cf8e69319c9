package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/school-dashboard/internal/api"
	"github.com/nhle/school-dashboard/internal/model"
)

// Service is the REST-backed notification list, decoupled from the live
// socket. Fetches replace the list wholesale; each response is tagged
// with a request sequence number so a slow early response can never
// overwrite the result of a later call.
type Service struct {
	client *api.Client
	role   model.UserRole
	logger *zap.SugaredLogger

	mu       sync.Mutex
	items    []model.Notification
	inflight int
	lastErr  error
	issued   uint64
	applied  uint64
}

// NewService creates a Service calling the given portal.
func NewService(client *api.Client, role model.UserRole, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{client: client, role: role, logger: logger}
}

// FetchAll retrieves the caller's notifications and replaces the local
// list. On failure the prior list is left intact and the error is both
// recorded and returned. A response superseded by a later call is
// dropped.
func (s *Service) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.inflight++
	s.mu.Unlock()

	items, err := s.client.ListNotifications(ctx, s.role)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	// A response superseded by a later call carries no signal either
	// way: neither its items nor its error may touch current state.
	if seq <= s.applied {
		s.logger.Infow("dropping stale notification fetch", "seq", seq, "applied", s.applied)
		return nil
	}

	if err != nil {
		s.lastErr = err
		return fmt.Errorf("fetching notifications: %w", err)
	}

	s.applied = seq
	s.items = items
	s.lastErr = nil
	return nil
}

// MarkAsRead acknowledges a notification on the server. On success the
// matching local item is replaced with the server's representation; if
// the id is not in the local list, the result is dropped (no phantom
// insertion). On failure the local list is unchanged.
func (s *Service) MarkAsRead(ctx context.Context, id string) error {
	updated, err := s.client.MarkNotificationRead(ctx, s.role, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = updated
			return nil
		}
	}
	s.logger.Infow("mark-as-read for id absent from local list", "id", id)
	return nil
}

// UnreadCountFor counts the local items not yet acknowledged by userID.
// Recomputed on every call.
func (s *Service) UnreadCountFor(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if !n.ReadBy(userID) {
			count++
		}
	}
	return count
}

// Items returns the current REST-backed list.
func (s *Service) Items() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Replace swaps in a list from another source (the local cache on
// startup). It never overrides data from a completed fetch.
func (s *Service) Replace(items []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applied > 0 {
		return
	}
	s.items = items
}

// Loading reports whether a fetch is currently in flight.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the error recorded by the most recent failed fetch, or
// nil after a successful one.
func (s *Service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
