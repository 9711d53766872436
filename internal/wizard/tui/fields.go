package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// fieldsKeyMap defines key bindings for the fields screen
type fieldsKeyMap struct {
	Next  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k fieldsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Enter, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k fieldsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Enter},
		{k.Back, k.Quit},
	}
}

// FieldsModel collects the selected command's numeric fields, one text input
// per field. Enter on the last field validates everything and completes the
// screen.
type FieldsModel struct {
	Serial  string
	Command wizardCommand

	Inputs []textinput.Model
	Focus  int

	ValidationError string

	// Result
	Done          bool
	Values        []uint64
	BackRequested bool

	Width  int
	Height int

	Help help.Model
	Keys fieldsKeyMap
}

// NewFieldsModel creates the fields screen for the selected command
func NewFieldsModel(serial string, cmd wizardCommand) FieldsModel {
	inputs := make([]textinput.Model, len(cmd.Fields))
	for i, f := range cmd.Fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.CharLimit = 10
		in.Width = 12
		if i == 0 {
			in.Focus()
		}
		inputs[i] = in
	}

	keys := fieldsKeyMap{
		Next:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}

	return FieldsModel{
		Serial:  serial,
		Command: cmd,
		Inputs:  inputs,
		Help:    help.New(),
		Keys:    keys,
	}
}

// Init implements tea.Model
func (m FieldsModel) Init() tea.Cmd {
	if len(m.Inputs) > 0 {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model
func (m FieldsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.BackRequested = true
		return m, nil

	case "tab", "shift+tab":
		if len(m.Inputs) > 1 {
			m.Inputs[m.Focus].Blur()
			if keyMsg.String() == "tab" {
				m.Focus = (m.Focus + 1) % len(m.Inputs)
			} else {
				m.Focus = (m.Focus + len(m.Inputs) - 1) % len(m.Inputs)
			}
			m.Inputs[m.Focus].Focus()
			return m, textinput.Blink
		}
		return m, nil

	case "enter":
		if m.Focus < len(m.Inputs)-1 {
			m.Inputs[m.Focus].Blur()
			m.Focus++
			m.Inputs[m.Focus].Focus()
			return m, textinput.Blink
		}
		return m.validate()
	}

	var cmd tea.Cmd
	m.Inputs[m.Focus], cmd = m.Inputs[m.Focus].Update(keyMsg)
	m.ValidationError = ""
	return m, cmd
}

// validate parses every field and completes the screen when all are in range
func (m FieldsModel) validate() (tea.Model, tea.Cmd) {
	values := make([]uint64, len(m.Inputs))
	for i, in := range m.Inputs {
		f := m.Command.Fields[i]
		raw := strings.TrimSpace(in.Value())
		if raw == "" {
			raw = f.Placeholder
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			m.ValidationError = fmt.Sprintf("%s: %q is not a number", f.Label, raw)
			return m, nil
		}
		if v < f.Min || v > f.Max {
			m.ValidationError = fmt.Sprintf("%s: %d is out of range (%d to %d)", f.Label, v, f.Min, f.Max)
			return m, nil
		}
		values[i] = v
	}

	m.Done = true
	m.Values = values
	return m, nil
}

// View implements tea.Model
func (m FieldsModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildContent builds the fields screen content
func (m FieldsModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle(m.Command.Name))
	b.WriteString(RenderSubtitle("  Device: " + m.Serial))
	b.WriteString("\n\n")

	if m.Command.Warning != "" {
		b.WriteString(WarningBoxStyle.Render("⚠ " + m.Command.Warning))
		b.WriteString("\n\n")
	}

	for i, in := range m.Inputs {
		label := m.Command.Fields[i].Label
		if i == m.Focus {
			b.WriteString(FocusedInputStyle.Render("  " + label + ":"))
		} else {
			b.WriteString(BlurredInputStyle.Render("  " + label + ":"))
		}
		b.WriteString("\n")
		b.WriteString("  " + in.View())
		b.WriteString("\n\n")
	}

	if m.ValidationError != "" {
		b.WriteString(RenderError(m.ValidationError))
		b.WriteString("\n")
	}

	return b.String()
}
