package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// PickerItem is one entry shown in the list picker.
type PickerItem struct {
	Label    string // primary text (e.g. wallet name)
	SubLabel string // secondary text shown dimmed (e.g. address)
	Value    string // value returned on selection (may differ from Label)
}

// PickResult is what a key press did to a Picker.
type PickResult int

const (
	PickPending PickResult = iota
	PickSelected
	PickCancelled
)

// Picker is a list selector that can run on its own (PickItem) or be
// embedded in another model, such as the connect prompt of the mint card.
type Picker struct {
	Title  string
	Items  []PickerItem
	cursor int
}

// NewPicker creates a picker over items.
func NewPicker(title string, items []PickerItem) *Picker {
	return &Picker{Title: title, Items: items}
}

// Current returns the highlighted item.
func (p *Picker) Current() (PickerItem, bool) {
	if len(p.Items) == 0 {
		return PickerItem{}, false
	}
	return p.Items[p.cursor], true
}

// HandleKey applies one key press.
func (p *Picker) HandleKey(key string) PickResult {
	switch key {
	case "q", "ctrl+c", "esc":
		return PickCancelled
	case "up", "k", "shift+tab":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j", "tab":
		if p.cursor < len(p.Items)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.Items) > 0 {
			return PickSelected
		}
	}
	return PickPending
}

// View renders the list with the highlighted row selected.
func (p *Picker) View() string {
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("  "+p.Title) + "\n")

	for i, item := range p.Items {
		prefix := "    "
		if i == p.cursor {
			prefix = "  ▸ "
		}

		line := prefix + StyleValue.Render(item.Label)
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}

		if i == p.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ esc ] cancel") + "\n")
	return sb.String()
}

// pickerModel runs a Picker as a standalone program.
type pickerModel struct {
	picker   *Picker
	selected *PickerItem
	quitting bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch m.picker.HandleKey(key.String()) {
	case PickCancelled:
		m.quitting = true
		return m, tea.Quit
	case PickSelected:
		item, _ := m.picker.Current()
		m.selected = &item
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}
	return "\n" + m.picker.View()
}

// ErrNothingToPick is returned by PickItem for an empty list.
var ErrNothingToPick = errors.New("no items to pick from")

// PickItem runs an interactive list picker and returns the selected item's
// Value. Returns ("", nil) if the user cancels.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToPick
	}

	p := tea.NewProgram(pickerModel{picker: NewPicker(title, items)}, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
