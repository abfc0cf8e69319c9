package roster

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/school-dashboard/internal/theme"
)

// Item is a single roster row, already adapted for display.
type Item struct {
	ID    string
	Label string
	Meta  string
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Label }

// itemDelegate renders roster rows one line each.
type itemDelegate struct{}

func (itemDelegate) Height() int  { return 1 }
func (itemDelegate) Spacing() int { return 0 }

func (itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	meta := ""
	if it.Meta != "" {
		meta = theme.HelpStyle.Render("  " + it.Meta)
	}
	line := fmt.Sprintf("%s%s", it.Label, meta)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// filterItems applies the search query client-side, matching label and
// meta case-insensitively.
func filterItems(items []Item, query string) []Item {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	var out []Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Label), q) ||
			strings.Contains(strings.ToLower(it.Meta), q) {
			out = append(out, it)
		}
	}
	return out
}
