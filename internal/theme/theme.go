package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/school-dashboard/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps dropdown and detail content areas.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle is used for inline error messages.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// ToastStyle frames an ephemeral toast entry.
var ToastStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue)

// ImportantToastStyle frames a toast for an important notification.
var ImportantToastStyle = ToastStyle.
	BorderForeground(ColorRed)

// NotificationStyle returns a color-coded style for the given
// notification type. Unknown types get the default gray rendering,
// never an error.
func NotificationStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch t {
	case model.TypeNewGrade:
		return base.Foreground(ColorGreen)
	case model.TypeNewAssignment:
		return base.Foreground(ColorBlue)
	case model.TypeNewTest:
		return base.Foreground(ColorMagenta)
	case model.TypeDeadline:
		return base.Foreground(ColorRed)
	case model.TypeClassUpdate:
		return base.Foreground(ColorOrange)
	case model.TypeMessage:
		return base.Foreground(ColorYellow)
	case model.TypeSystem:
		return base.Foreground(ColorWhite)
	default:
		return base.Foreground(ColorGray)
	}
}

// NotificationIcon returns the glyph shown next to a notification of
// the given type; unknown types fall back to a generic dot.
func NotificationIcon(t model.NotificationType) string {
	switch t {
	case model.TypeNewGrade:
		return "✓"
	case model.TypeNewAssignment:
		return "✎"
	case model.TypeNewTest:
		return "≡"
	case model.TypeDeadline:
		return "!"
	case model.TypeClassUpdate:
		return "↻"
	case model.TypeMessage:
		return "✉"
	case model.TypeSystem:
		return "⚙"
	default:
		return "•"
	}
}

// ConnStateStyle returns a color-coded style for the connection state
// string shown in the header.
func ConnStateStyle(state string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch state {
	case "authenticated":
		return base.Foreground(ColorGreen)
	case "connected", "connecting", "reconnecting":
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorRed)
	}
}
