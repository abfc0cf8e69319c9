package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/school-dashboard/internal/api"
	"github.com/nhle/school-dashboard/internal/cache"
	"github.com/nhle/school-dashboard/internal/credential"
	"github.com/nhle/school-dashboard/internal/desktop"
	"github.com/nhle/school-dashboard/internal/keys"
	"github.com/nhle/school-dashboard/internal/model"
	"github.com/nhle/school-dashboard/internal/notify"
	"github.com/nhle/school-dashboard/internal/theme"
	"github.com/nhle/school-dashboard/internal/ui"
	"github.com/nhle/school-dashboard/internal/ui/bell"
	"github.com/nhle/school-dashboard/internal/ui/connect"
	"github.com/nhle/school-dashboard/internal/ui/roster"
	"github.com/nhle/school-dashboard/internal/ui/toast"
	"github.com/nhle/school-dashboard/internal/ws"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewRoster ViewState = iota
	ViewBell
	ViewConnect
	ViewHelp
)

// sockEventMsg carries a connection state transition to the UI.
type sockEventMsg ws.Event

// pushMsg carries a socket-pushed notification to the UI.
type pushMsg struct {
	n  model.Notification
	at time.Time
}

// connectResultMsg reports the outcome of a Connect call.
type connectResultMsg struct {
	err error
}

// cacheHydratedMsg carries notifications loaded from the local cache.
type cacheHydratedMsg struct {
	items []model.Notification
}

// Deps bundles the services the root model is composed from. Everything
// is constructed in main and injected; there is no ambient module state.
type Deps struct {
	Config  *model.AppConfig
	Client  *api.Client
	Manager *ws.Manager
	Router  *ws.Router
	Store   *notify.Store
	Service *notify.Service
	Cache   *cache.Cache
	Bridge  *desktop.Bridge
	Logger  *zap.SugaredLogger
	Token   string
}

// Model is the root Bubble Tea model: view routing, layout, and the
// fan-out from the socket and fetch service to the surfaces.
type Model struct {
	deps   Deps
	keys   *keys.KeyMap
	layout ui.Layout

	currentView  ViewState
	previousView ViewState

	rosterView  roster.Model
	bellView    bell.Model
	connectView connect.Model
	toasts      toast.Model

	pushCh chan pushMsg

	connState ws.State
	attempt   int
	exhausted bool
	ready     bool
}

// New wires the root model from its dependencies.
func New(deps Deps) *Model {
	k := keys.DefaultKeyMap()
	role := model.UserRole(deps.Config.Portal.Role)

	m := &Model{
		deps:        deps,
		keys:        k,
		rosterView:  roster.New(deps.Client, k, 80, 24),
		bellView:    bell.New(deps.Store, deps.Service, k, deps.Config.Portal.UserID, 80, 24),
		connectView: connect.New(role, 60),
		toasts:      toast.New(80),
		pushCh:      make(chan pushMsg, 32),
		connState:   ws.StateDisconnected,
	}

	// Every push lands in the store first, then fans out to the toast
	// stack and the desktop bridge via the Bubble Tea loop.
	deps.Router.OnNotification(func(n model.Notification) {
		select {
		case m.pushCh <- pushMsg{n: n, at: time.Now()}:
		default:
			deps.Logger.Warnw("dropping push for UI: channel full", "id", n.ID)
		}
	})

	return m
}

// Init hydrates from the cache, starts the socket session when a token
// is available, and arms the event pumps.
func (m *Model) Init() tea.Cmd {
	if m.deps.Config.Display.DesktopNotifications {
		m.deps.Bridge.RequestPermission()
	}

	cmds := []tea.Cmd{
		m.rosterView.Init(),
		m.waitForSockEvent(),
		m.waitForPush(),
		m.hydrateFromCache(),
	}

	if m.deps.Token != "" {
		cmds = append(cmds, m.connectSocket(), m.bellView.Refresh())
	}

	return tea.Batch(cmds...)
}

// connectSocket opens the socket session with the configured role and
// the current token.
func (m *Model) connectSocket() tea.Cmd {
	mgr := m.deps.Manager
	role := m.deps.Config.Portal.Role
	token := m.deps.Token
	return func() tea.Msg {
		return connectResultMsg{err: mgr.Connect(role, token)}
	}
}

// waitForSockEvent pumps one connection event into the update loop.
func (m *Model) waitForSockEvent() tea.Cmd {
	events := m.deps.Manager.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return sockEventMsg(ev)
	}
}

// waitForPush pumps one pushed notification into the update loop.
func (m *Model) waitForPush() tea.Cmd {
	ch := m.pushCh
	return func() tea.Msg {
		return <-ch
	}
}

// hydrateFromCache loads the persisted notification list so the bell
// has content before the first fetch completes.
func (m *Model) hydrateFromCache() tea.Cmd {
	c := m.deps.Cache
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		items, err := c.GetNotifications(ctx, 200)
		if err != nil {
			return nil
		}
		return cacheHydratedMsg{items: items}
	}
}

// persistFetched writes the current REST list through to the cache.
func (m *Model) persistFetched() tea.Cmd {
	c := m.deps.Cache
	if c == nil {
		return nil
	}
	items := m.deps.Service.Items()
	logger := m.deps.Logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.UpsertNotifications(ctx, items); err != nil {
			logger.Warnw("persisting notifications to cache", "error", err)
		}
		return nil
	}
}

// Update handles messages and dispatches to the active view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.rosterView.SetSize(contentWidth, contentHeight)
		m.bellView.SetSize(contentWidth, contentHeight)
		m.connectView.SetWidth(min(contentWidth-4, 72))
		m.toasts.SetWidth(contentWidth)
		return m.updateActiveView(msg)

	case sockEventMsg:
		m.connState = msg.State
		m.attempt = msg.Attempt
		if msg.Exhausted {
			m.exhausted = true
		} else if msg.State != ws.StateDisconnected {
			m.exhausted = false
		}
		return m, m.waitForSockEvent()

	case pushMsg:
		m.deps.Store.Insert(msg.n)
		m.deps.Bridge.Notify(msg.n)
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Push(msg.n, msg.at)
		return m, tea.Batch(cmd, m.waitForPush())

	case toast.ExpiredMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Update(msg)
		return m, cmd

	case connectResultMsg:
		// A failed dial is already being retried by the manager;
		// nothing to do here beyond the header state updates.
		return m, nil

	case cacheHydratedMsg:
		m.deps.Service.Replace(msg.items)
		return m, nil

	case bell.FetchedMsg:
		var cmd tea.Cmd
		m.bellView, cmd = m.bellView.Update(msg)
		if msg.Err == nil {
			return m, tea.Batch(cmd, m.persistFetched())
		}
		return m, cmd

	case bell.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case connect.DoneMsg:
		m.deps.Config.Portal.Role = string(msg.Role)
		m.deps.Token = msg.Token
		m.deps.Client.SetToken(msg.Token)
		if err := model.SaveConfig(model.DefaultConfigPath(), m.deps.Config); err != nil {
			m.deps.Logger.Warnw("saving config", "error", err)
		}
		m.currentView = ViewRoster
		return m, tea.Batch(
			m.connectSocket(),
			m.bellView.Refresh(),
			m.rosterView.Load(),
		)

	case connect.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of view. The
// connect form owns its input, so only quit applies there.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return true, m, m.quit()
	}
	if m.currentView == ViewConnect {
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewRoster {
			return true, m, m.quit()
		}

	case "b":
		if m.currentView == ViewBell {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewBell
		return true, m, m.bellView.Refresh()

	case "c":
		m.previousView = m.currentView
		m.currentView = ViewConnect
		role := model.UserRole(m.deps.Config.Portal.Role)
		m.connectView = connect.New(role, min(m.layout.ContentWidth()-4, 72))
		return true, m, m.connectView.Init()

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case "R":
		if m.deps.Token != "" {
			m.exhausted = false
			return true, m, m.connectSocket()
		}

	case "esc":
		if m.currentView == ViewHelp || m.currentView == ViewBell {
			m.currentView = m.previousView
			return true, m, nil
		}
		if len(m.toasts.Entries()) > 0 {
			m.toasts = m.toasts.Dismiss()
			return true, m, nil
		}
	}

	return false, m, nil
}

// quit tears the session down and exits.
func (m *Model) quit() tea.Cmd {
	m.deps.Manager.Disconnect()
	if m.deps.Cache != nil {
		m.deps.Cache.Close()
	}
	return tea.Quit
}

// updateActiveView dispatches the message to the currently active view.
func (m *Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewRoster:
		m.rosterView, cmd = m.rosterView.Update(msg)
	case ViewBell:
		m.bellView, cmd = m.bellView.Update(msg)
	case ViewConnect:
		m.connectView, cmd = m.connectView.Update(msg)
	case ViewHelp:
		// Static content; nothing to update.
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	role := m.deps.Config.Portal.Role
	headerTitle := fmt.Sprintf("School Dashboard · %s portal", role)
	if unread := m.deps.Store.Unread(); unread > 0 {
		headerTitle = fmt.Sprintf("%s [%d new]", headerTitle, unread)
	}

	header := m.layout.RenderHeader(headerTitle, m.connStatus())
	content := m.layout.OverlayToasts(m.renderContent(), m.toasts.View())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current view.
func (m *Model) renderContent() string {
	switch m.currentView {
	case ViewBell:
		return m.bellView.View()
	case ViewConnect:
		return m.connectView.View()
	case ViewHelp:
		return m.renderHelp()
	default:
		return m.rosterView.View()
	}
}

// connStatus returns the styled connection state for the header.
func (m *Model) connStatus() string {
	state := m.connState.String()
	if m.connState == ws.StateReconnecting {
		state = fmt.Sprintf("reconnecting (%d)", m.attempt)
	}
	if m.exhausted {
		state = "offline"
	}
	return theme.ConnStateStyle(m.connState.String()).Render(state)
}

// keyHints returns shortcut hints for the status bar.
func (m *Model) keyHints() string {
	if m.exhausted {
		return "connection lost, press R to reconnect"
	}
	if last := m.deps.Router.LastMessage(); last != nil && last.Message != "" &&
		(last.Type == ws.FrameTestStarted || last.Type == ws.FrameAnswerSubmitted) {
		return last.Message
	}

	switch m.currentView {
	case ViewBell:
		return "tab live/inbox | m mark read | C clear | i important | esc close"
	case ViewConnect:
		return "enter submit | esc cancel"
	case ViewHelp:
		return "? close help | esc back"
	default:
		return "b notifications | tab cycle view | / search | c settings | ? help | q quit"
	}
}

// renderHelp draws the expanded keybinding reference.
func (m *Model) renderHelp() string {
	out := theme.HeaderStyle.Render("Keybindings") + "\n\n"
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			out += fmt.Sprintf(
				"  %-10s %s\n",
				b.Help().Key,
				theme.HelpStyle.Render(b.Help().Desc),
			)
		}
		out += "\n"
	}
	return out
}

// ResolveToken finds the bearer token: environment first, keyring next,
// empty when neither is set.
func ResolveToken() string {
	if token := os.Getenv("SCHOOL_DASHBOARD_TOKEN"); token != "" {
		return token
	}
	token, err := credential.Get(credential.TokenKey)
	if err != nil {
		return ""
	}
	return token
}
