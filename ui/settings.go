package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

// settingsState drives the per-provider settings screen: an enabled
// toggle plus the fields the provider declares in its config schema.
type settingsState struct {
	slug    string
	name    string
	enabled bool

	keys   []string
	labels map[string]string
	values map[string]string

	idx     int
	editing bool
	input   textinput.Model
}

func newSettings(slug, name string, enabled bool, schema, values map[string]string) settingsState {
	keys := make([]string, 0, len(schema))
	for key := range schema {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ti := textinput.New()
	ti.Prompt = "> "

	if values == nil {
		values = map[string]string{}
	}

	return settingsState{
		slug:    slug,
		name:    name,
		enabled: enabled,
		keys:    keys,
		labels:  schema,
		values:  values,
		input:   ti,
	}
}

// rowCount is the enabled toggle plus one row per field.
func (s *settingsState) rowCount() int {
	return len(s.keys) + 1
}

// fieldAt returns the config key for a row, or "" for the toggle row.
func (s *settingsState) fieldAt(row int) string {
	if row == 0 || row > len(s.keys) {
		return ""
	}
	return s.keys[row-1]
}

// beginEdit opens the inline editor for the highlighted field.
func (s *settingsState) beginEdit() bool {
	key := s.fieldAt(s.idx)
	if key == "" {
		return false
	}
	s.editing = true
	s.input.SetValue(s.values[key])
	if key == "api_key" {
		s.input.EchoMode = textinput.EchoPassword
	} else {
		s.input.EchoMode = textinput.EchoNormal
	}
	s.input.Focus()
	return true
}

// commitEdit stores the edited value and returns the field key.
func (s *settingsState) commitEdit() string {
	key := s.fieldAt(s.idx)
	if key != "" {
		s.values[key] = s.input.Value()
	}
	s.editing = false
	s.input.Blur()
	return key
}

func (s *settingsState) view(width, height int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(s.name+" Settings") + "\n\n")

	toggle := "  " + checkbox(s.enabled) + " Enabled"
	if s.idx == 0 {
		toggle = SelectedStyle.Render("> " + checkbox(s.enabled) + " Enabled")
	}
	b.WriteString(toggle + "\n")

	for i, key := range s.keys {
		value := s.values[key]
		if key == "api_key" && value != "" {
			value = strings.Repeat("*", 8)
		}
		if value == "" {
			value = DimStyle.Render("(unset)")
		}

		line := "  " + s.labels[key] + ": " + value
		if s.idx == i+1 {
			if s.editing {
				line = SelectedStyle.Render("> "+s.labels[key]+": ") + s.input.View()
			} else {
				line = SelectedStyle.Render("> " + s.labels[key] + ": " + value)
			}
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if s.editing {
		b.WriteString(FormatFooter("Enter", "Save", "Esc", "Cancel"))
	} else {
		b.WriteString(FormatFooter("j/k", "Navigate", "Space", "Toggle", "Enter", "Edit", "Esc", "Back"))
	}
	return b.String()
}
