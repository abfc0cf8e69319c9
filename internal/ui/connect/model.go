package connect

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/school-dashboard/internal/credential"
	"github.com/nhle/school-dashboard/internal/model"
)

// DoneMsg is sent when the form is submitted with valid values. The
// token has already been written to the keyring.
type DoneMsg struct {
	Role  model.UserRole
	Token string
}

// CancelMsg is sent when the user aborts the form.
type CancelMsg struct{}

// Model is the connect/settings form: portal role plus bearer token.
type Model struct {
	form  *huh.Form
	err   string
	width int
}

// New creates the form pre-filled with the current role.
func New(role model.UserRole, width int) Model {
	if !role.Valid() {
		role = model.RoleStudent
	}
	return Model{form: buildForm(role, width), width: width}
}

func buildForm(role model.UserRole, width int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("role").
				Title("Portal").
				Description("Which portal are you signing in to?").
				Options(
					huh.NewOption("Student", string(model.RoleStudent)).
						Selected(role == model.RoleStudent),
					huh.NewOption("Teacher", string(model.RoleTeacher)).
						Selected(role == model.RoleTeacher),
				),
			huh.NewInput().
				Key("token").
				Title("Access Token").
				Description("Bearer token issued by the platform").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("token is required")
					}
					return nil
				}),
		),
	).WithWidth(width)
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form and emits DoneMsg/CancelMsg on completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		role := model.UserRole(m.form.GetString("role"))
		token := strings.TrimSpace(m.form.GetString("token"))

		if err := credential.Set(credential.TokenKey, token); err != nil {
			// The session still works; the token just will not
			// survive a restart.
			m.err = fmt.Sprintf("keyring: %v", err)
		}

		return m, func() tea.Msg {
			return DoneMsg{Role: role, Token: token}
		}
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	out := m.form.View()
	if m.err != "" {
		out += "\n" + m.err
	}
	return out
}

// SetWidth updates the form width.
func (m *Model) SetWidth(width int) {
	m.width = width
	m.form = m.form.WithWidth(width)
}
