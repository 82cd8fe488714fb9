package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// selectorItem is one row in a list screen. value carries the id the
// caller acts on (chat id, provider slug, model name).
type selectorItem struct {
	label string
	value string
	dim   bool
}

// selectorState drives the chat list, provider menu, model selector, and
// search results screens.
type selectorState struct {
	title     string
	items     []selectorItem
	filtered  []selectorItem
	idx       int
	filter    textinput.Model
	filtering bool
	footer    string
}

func newSelector(title string, items []selectorItem, footer string) selectorState {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.Prompt = "/ "

	return selectorState{
		title:    title,
		items:    items,
		filtered: items,
		filter:   ti,
		footer:   footer,
	}
}

// applyFilter narrows the list with fuzzy matching on labels.
func (s *selectorState) applyFilter() {
	query := s.filter.Value()
	if query == "" {
		s.filtered = s.items
	} else {
		labels := make([]string, len(s.items))
		for i, item := range s.items {
			labels[i] = item.label
		}
		matches := fuzzy.Find(query, labels)
		s.filtered = make([]selectorItem, 0, len(matches))
		for _, match := range matches {
			s.filtered = append(s.filtered, s.items[match.Index])
		}
	}
	if s.idx >= len(s.filtered) {
		s.idx = 0
	}
}

// selected returns the highlighted item.
func (s *selectorState) selected() (selectorItem, bool) {
	if len(s.filtered) == 0 || s.idx >= len(s.filtered) {
		return selectorItem{}, false
	}
	return s.filtered[s.idx], true
}

// update handles one key press. It reports whether the key was consumed;
// Enter and Esc are left for the caller.
func (s *selectorState) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	if s.filtering {
		switch msg.String() {
		case "enter", "esc":
			s.filtering = false
			s.filter.Blur()
			return msg.String() == "esc", nil
		default:
			var cmd tea.Cmd
			s.filter, cmd = s.filter.Update(msg)
			s.applyFilter()
			return true, cmd
		}
	}

	switch msg.String() {
	case "up", "k":
		if s.idx > 0 {
			s.idx--
		}
		return true, nil
	case "down", "j":
		if s.idx < len(s.filtered)-1 {
			s.idx++
		}
		return true, nil
	case "/":
		s.filtering = true
		s.filter.Focus()
		return true, textinput.Blink
	}
	return false, nil
}

func (s *selectorState) view(width, height int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(s.title) + "\n\n")

	if s.filtering || s.filter.Value() != "" {
		b.WriteString(s.filter.View() + "\n\n")
	}

	visible := height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if s.idx >= visible {
		start = s.idx - visible + 1
	}

	if len(s.filtered) == 0 {
		b.WriteString(DimStyle.Render("  (nothing here)") + "\n")
	}
	for i := start; i < len(s.filtered) && i < start+visible; i++ {
		item := s.filtered[i]
		line := "  " + item.label
		switch {
		case i == s.idx:
			line = SelectedStyle.Render("> " + item.label)
		case item.dim:
			line = DimStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if s.footer != "" {
		b.WriteString(s.footer)
	} else {
		b.WriteString(FormatFooter("j/k", "Navigate", "/", "Filter", "Enter", "Select", "Esc", "Back"))
	}
	return b.String()
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func starMark(starred bool) string {
	if starred {
		return "★ "
	}
	return "  "
}

func chatListLabel(title string, starred bool, messages int) string {
	return fmt.Sprintf("%s%s %s", starMark(starred), title, DimStyle.Render(fmt.Sprintf("(%d messages)", messages)))
}
