package notify

import (
	"sync"

	"github.com/nhle/school-dashboard/internal/model"
)

// Store is the client-side source of truth for push-delivered
// notifications: a newest-first list, an unread counter, and a pointer
// to the latest arrival for triggering ephemeral UI. Only Insert and
// Clear mutate it.
//
// The store does not deduplicate by id: if the server pushes the same
// notification twice it appears twice. The unread counter is a pure
// client-side count of pushes since the last Clear, deliberately
// independent of the per-user isReadBy tracking on the REST side.
type Store struct {
	mu     sync.Mutex
	items  []model.Notification
	unread int
	latest *model.Notification
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Insert prepends n, bumps the unread counter, and makes n the latest
// notification.
func (s *Store) Insert(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]model.Notification{n}, s.items...)
	s.unread++
	latest := n
	s.latest = &latest
}

// Clear empties the collection and resets the unread counter. It has no
// effect on server-side read state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.unread = 0
	s.latest = nil
}

// All returns the notifications newest-first.
func (s *Store) All() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Important returns only the notifications flagged important,
// newest-first.
func (s *Store) Important() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Notification
	for _, n := range s.items {
		if n.Important {
			out = append(out, n)
		}
	}
	return out
}

// Unread returns the number of pushes received since the last Clear.
func (s *Store) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Latest returns the most recently inserted notification, or nil when
// the store is empty.
func (s *Store) Latest() *model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return nil
	}
	latest := *s.latest
	return &latest
}

// Len returns the number of stored notifications.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
