package toast

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/school-dashboard/internal/model"
	"github.com/nhle/school-dashboard/internal/theme"
)

// Duration is how long a toast stays on screen unless dismissed.
const Duration = 5000 * time.Millisecond

// maxVisible caps the stack so a notification burst cannot take over
// the screen; older entries still expire on their own timers.
const maxVisible = 4

// ExpiredMsg removes the entry with the given key after its timer.
type ExpiredMsg struct {
	Key string
}

// Entry is one ephemeral toast. The key combines the notification id
// with the receipt timestamp, so re-delivery of the same id produces a
// distinct toast.
type Entry struct {
	Key          string
	Notification model.Notification
}

// Key builds a toast key for a notification received at the given time.
func Key(n model.Notification, receivedAt time.Time) string {
	return fmt.Sprintf("%s-%d", n.ID, receivedAt.UnixNano())
}

// Model is the toast stack surface.
type Model struct {
	entries []Entry
	width   int
}

// New creates an empty toast stack.
func New(width int) Model {
	return Model{width: width}
}

// Push adds a toast for n and arms its expiry timer.
func (m Model) Push(n model.Notification, receivedAt time.Time) (Model, tea.Cmd) {
	key := Key(n, receivedAt)
	m.entries = append(m.entries, Entry{Key: key, Notification: n})

	return m, tea.Tick(Duration, func(time.Time) tea.Msg {
		return ExpiredMsg{Key: key}
	})
}

// Update handles expiry messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if expired, ok := msg.(ExpiredMsg); ok {
		m.entries = remove(m.entries, expired.Key)
	}
	return m, nil
}

// Dismiss removes the oldest visible toast before its timer fires. The
// stale ExpiredMsg that arrives later finds nothing and is a no-op.
func (m Model) Dismiss() Model {
	if len(m.entries) > 0 {
		m.entries = m.entries[1:]
	}
	return m
}

// DismissAll clears the whole stack.
func (m Model) DismissAll() Model {
	m.entries = nil
	return m
}

// Entries returns the live toasts, oldest first.
func (m Model) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// SetWidth updates the rendering width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// View renders the visible toasts, newest at the top.
func (m Model) View() string {
	if len(m.entries) == 0 {
		return ""
	}

	start := 0
	if len(m.entries) > maxVisible {
		start = len(m.entries) - maxVisible
	}

	var rendered []string
	for i := len(m.entries) - 1; i >= start; i-- {
		rendered = append(rendered, m.renderEntry(m.entries[i]))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func (m Model) renderEntry(e Entry) string {
	n := e.Notification

	style := theme.ToastStyle
	if n.Important {
		style = theme.ImportantToastStyle
	}

	icon := theme.NotificationIcon(n.Type)
	title := theme.NotificationStyle(n.Type).Render(n.Title)
	body := truncate(n.Message, m.width/2)

	return style.Render(fmt.Sprintf("%s %s  %s", icon, title, body))
}

// truncate shortens s to at most max runes, ending in an ellipsis.
// Widths of 8 or fewer leave s alone rather than render a stub.
func truncate(s string, max int) string {
	if max <= 8 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func remove(entries []Entry, key string) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}
