package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/school-dashboard/internal/api"
	"github.com/nhle/school-dashboard/internal/keys"
	"github.com/nhle/school-dashboard/internal/theme"
)

// Kind selects which portal list the view is showing.
type Kind int

const (
	KindStudents Kind = iota
	KindTeachers
	KindClasses
	KindAssignments
	KindTests

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTeachers:
		return "teachers"
	case KindClasses:
		return "classes"
	case KindAssignments:
		return "assignments"
	case KindTests:
		return "tests"
	default:
		return "students"
	}
}

// LoadedMsg carries a freshly fetched page for a kind.
type LoadedMsg struct {
	Kind  Kind
	Items []Item
	Err   error
}

// Model is the roster list view: the portal's CRUD pages at their
// interface boundary, rendered read-only.
type Model struct {
	list        list.Model
	client      *api.Client
	keys        *keys.KeyMap
	kind        Kind
	searchMode  bool
	searchInput textinput.Model
	query       string
	loadErr     error
	width       int
	height      int
}

// New creates a roster view backed by the given API client.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height-2)
	l.Title = "Students"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search…"
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		client:      client,
		keys:        k,
		kind:        KindStudents,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init loads the initial list.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command fetching the active kind from the API.
func (m Model) Load() tea.Cmd {
	client := m.client
	kind := m.kind
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		items, err := fetch(ctx, client, kind)
		return LoadedMsg{Kind: kind, Items: items, Err: err}
	}
}

// fetch retrieves one kind's list and adapts it for display.
func fetch(ctx context.Context, client *api.Client, kind Kind) ([]Item, error) {
	switch kind {
	case KindTeachers:
		teachers, err := client.ListTeachers(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(teachers))
		for i, t := range teachers {
			meta := t.Email
			if len(t.Subjects) > 0 {
				meta = t.Subjects[0] + " | " + t.Email
			}
			items[i] = Item{ID: t.ID, Label: t.Name, Meta: meta}
		}
		return items, nil

	case KindClasses:
		classes, err := client.ListClasses(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(classes))
		for i, c := range classes {
			items[i] = Item{
				ID:    c.ID,
				Label: c.Name,
				Meta:  fmt.Sprintf("%s | %d students", c.Subject, len(c.StudentIDs)),
			}
		}
		return items, nil

	case KindAssignments:
		assignments, err := client.ListAssignments(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(assignments))
		for i, a := range assignments {
			items[i] = Item{
				ID:    a.ID,
				Label: a.Title,
				Meta:  "due " + a.DueDate.Format("Jan 02"),
			}
		}
		return items, nil

	case KindTests:
		tests, err := client.ListTests(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(tests))
		for i, t := range tests {
			meta := t.StartsAt.Format("Jan 02 15:04")
			if !t.Published {
				meta += " | draft"
			}
			items[i] = Item{ID: t.ID, Label: t.Title, Meta: meta}
		}
		return items, nil

	default:
		students, err := client.ListStudents(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(students))
		for i, s := range students {
			items[i] = Item{ID: s.ID, Label: s.FullName(), Meta: s.Email}
		}
		return items, nil
	}
}

// Update handles messages for the roster view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Kind != m.kind {
			return m, nil
		}
		m.loadErr = msg.Err
		items := filterItems(msg.Items, m.query)
		listItems := make([]list.Item, len(items))
		for i, it := range items {
			listItems[i] = it
		}
		cmd := m.list.SetItems(listItems)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		return m, m.Load()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleRoster):
		m.kind = (m.kind + 1) % kindCount
		m.list.Title = titleFor(m.kind)
		return m, m.Load()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func titleFor(k Kind) string {
	switch k {
	case KindTeachers:
		return "Teachers"
	case KindClasses:
		return "Classes"
	case KindAssignments:
		return "Assignments"
	case KindTests:
		return "Tests"
	default:
		return "Students"
	}
}

// View renders the roster view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if m.loadErr != nil {
		return m.renderError()
	}
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

func (m Model) renderError() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorRed)

	if api.IsAuthError(m.loadErr) {
		return style.Render("Session expired.\nPress c to update your token.")
	}
	return style.Render(fmt.Sprintf("Could not load %s.\nPress r to retry.", m.kind))
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No matches.\nPress / to change the search.")
	}
	return style.Render(fmt.Sprintf("No %s yet.", m.kind))
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
