package bell

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/school-dashboard/internal/keys"
	"github.com/nhle/school-dashboard/internal/model"
	"github.com/nhle/school-dashboard/internal/notify"
	"github.com/nhle/school-dashboard/internal/theme"
)

// Section selects which list the dropdown is showing.
type Section int

const (
	// SectionLive shows the push-delivered store (this session).
	SectionLive Section = iota
	// SectionInbox shows the REST-backed persisted list.
	SectionInbox
)

// FetchedMsg is sent when a refresh of the REST list completes.
type FetchedMsg struct {
	Err error
}

// MarkedReadMsg is sent when a mark-as-read call completes.
type MarkedReadMsg struct {
	ID  string
	Err error
}

// CloseMsg asks the root model to close the dropdown.
type CloseMsg struct{}

// Model is the bell dropdown surface. It consumes the push store and
// the fetch service; the only mutation it performs on the store is
// Clear, via the clear-all action.
type Model struct {
	store   *notify.Store
	svc     *notify.Service
	keys    *keys.KeyMap
	userID  string
	section Section

	importantOnly bool
	cursor        int
	width         int
	height        int
	statusLine    string
}

// New creates a bell dropdown over the given store and fetch service.
func New(store *notify.Store, svc *notify.Service, k *keys.KeyMap, userID string, width, height int) Model {
	return Model{
		store:  store,
		svc:    svc,
		keys:   k,
		userID: userID,
		width:  width,
		height: height,
	}
}

// Refresh returns a command that re-fetches the REST list.
func (m Model) Refresh() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return FetchedMsg{Err: svc.FetchAll(ctx)}
	}
}

// Update handles messages for the dropdown.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FetchedMsg:
		// Fetch errors surface through the service's Err accessor.
		m.statusLine = ""
		m.clampCursor()
		return m, nil

	case MarkedReadMsg:
		if msg.Err != nil {
			m.statusLine = fmt.Sprintf("mark read failed: %v", msg.Err)
		} else {
			m.statusLine = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Bell):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.CycleRoster):
		if m.section == SectionLive {
			m.section = SectionInbox
		} else {
			m.section = SectionLive
		}
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Important):
		m.importantOnly = !m.importantOnly
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.ClearAll):
		if m.section == SectionLive {
			m.store.Clear()
			m.cursor = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.section == SectionInbox {
			return m, m.Refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if m.section != SectionInbox {
			return m, nil
		}
		items := m.visibleItems()
		if m.cursor >= len(items) {
			return m, nil
		}
		id := items[m.cursor].ID
		svc := m.svc
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return MarkedReadMsg{ID: id, Err: svc.MarkAsRead(ctx, id)}
		}
	}

	return m, nil
}

// visibleItems returns the list for the active section with the
// important filter applied.
func (m Model) visibleItems() []model.Notification {
	var items []model.Notification
	if m.section == SectionLive {
		items = m.store.All()
	} else {
		items = m.svc.Items()
	}

	if !m.importantOnly {
		return items
	}
	var out []model.Notification
	for _, n := range items {
		if n.Important {
			out = append(out, n)
		}
	}
	return out
}

func (m *Model) clampCursor() {
	n := len(m.visibleItems())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetSize updates the dropdown dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the dropdown.
func (m Model) View() string {
	title := m.renderTitle()
	items := m.visibleItems()

	var lines []string
	lines = append(lines, title, "")

	if len(items) == 0 {
		lines = append(lines, theme.HelpStyle.Render("nothing here"))
	}

	maxRows := m.height - 6
	if maxRows < 3 {
		maxRows = 3
	}
	for i, n := range items {
		if i >= maxRows {
			lines = append(lines, theme.HelpStyle.Render(
				fmt.Sprintf("… and %d more", len(items)-maxRows),
			))
			break
		}
		lines = append(lines, m.renderItem(n, i == m.cursor))
	}

	if m.statusLine != "" {
		lines = append(lines, "", theme.HelpStyle.Render(m.statusLine))
	}
	if m.section == SectionInbox {
		if m.svc.Loading() {
			lines = append(lines, "", theme.HelpStyle.Render("refreshing…"))
		} else if err := m.svc.Err(); err != nil {
			lines = append(lines, "", theme.ErrorStyle.Render("refresh failed, showing last known list"))
		}
	}

	return theme.PanelStyle.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

func (m Model) renderTitle() string {
	live := fmt.Sprintf("Live (%d new)", m.store.Unread())
	inbox := fmt.Sprintf("Inbox (%d unread)", m.svc.UnreadCountFor(m.userID))

	active := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	inactive := theme.HelpStyle

	if m.section == SectionLive {
		live = active.Render(live)
		inbox = inactive.Render(inbox)
	} else {
		live = inactive.Render(live)
		inbox = active.Render(inbox)
	}

	suffix := ""
	if m.importantOnly {
		suffix = lipgloss.NewStyle().Foreground(theme.ColorRed).Render("  [important]")
	}
	return live + "   " + inbox + suffix
}

func (m Model) renderItem(n model.Notification, selected bool) string {
	icon := theme.NotificationIcon(n.Type)
	title := theme.NotificationStyle(n.Type).Render(n.Title)

	unreadDot := " "
	if m.section == SectionInbox && !n.ReadBy(m.userID) {
		unreadDot = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("●")
	}

	from := ""
	if n.Sender.Display() != "" {
		from = theme.HelpStyle.Render(" · " + n.Sender.Display())
	}

	when := theme.HelpStyle.Render("  " + relativeTime(n.CreatedAt))

	line := fmt.Sprintf("%s %s %s%s%s", unreadDot, icon, title, from, when)
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
