package tui

import (
	"encoding/hex"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oduya/paygo/internal/config"
)

// keyEntryKeyMap defines key bindings for the key screen
type keyEntryKeyMap struct {
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyEntryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyEntryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.Back, k.Quit},
	}
}

// KeyEntryModel collects the device secret key. The input echoes asterisks
// and accepts either 32 hex characters or a path to a key file. When the
// device registry carries a key-file path for the serial, it is offered as
// the default.
type KeyEntryModel struct {
	Serial      string
	DefaultPath string

	input      textinput.Model
	EntryError string

	// Result
	Done          bool
	Key           []byte
	BackRequested bool

	Width  int
	Height int

	Help help.Model
	Keys keyEntryKeyMap
}

// NewKeyEntryModel creates the key screen for the selected device
func NewKeyEntryModel(serial, defaultPath string) KeyEntryModel {
	in := textinput.New()
	in.Placeholder = "32 hex chars or key file path"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '*'
	in.CharLimit = 256
	in.Width = 48
	in.Focus()

	keys := keyEntryKeyMap{
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}

	return KeyEntryModel{
		Serial:      serial,
		DefaultPath: defaultPath,
		input:       in,
		Help:        help.New(),
		Keys:        keys,
	}
}

// Init implements tea.Model
func (m KeyEntryModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m KeyEntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.BackRequested = true
		return m, nil

	case "enter":
		return m.resolve()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	m.EntryError = ""
	return m, cmd
}

// resolve turns the input into key material. Hex input decodes directly;
// anything else is treated as a key file path. Errors never echo what was
// typed.
func (m KeyEntryModel) resolve() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" && m.DefaultPath != "" {
		raw = m.DefaultPath
	}
	if raw == "" {
		m.EntryError = "a key is required for this operation"
		return m, nil
	}

	if len(raw) == 2*config.KeyLen && isHex(raw) {
		decoded, err := hex.DecodeString(raw)
		if err != nil {
			m.EntryError = "invalid hex key"
			return m, nil
		}
		m.Done = true
		m.Key = decoded
		return m, nil
	}

	decoded, err := config.ReadKeyFile(raw)
	if err != nil {
		m.EntryError = "could not read key file: " + err.Error()
		return m, nil
	}
	m.Done = true
	m.Key = decoded
	return m, nil
}

// isHex reports whether s consists only of hex digits
func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// View implements tea.Model
func (m KeyEntryModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildContent builds the key screen content
func (m KeyEntryModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Device Key"))
	b.WriteString(RenderSubtitle("  Device: " + m.Serial))
	b.WriteString("\n\n")

	b.WriteString("Enter the device secret key (input is hidden):\n\n")
	b.WriteString("  " + m.input.View())
	b.WriteString("\n\n")

	if m.DefaultPath != "" {
		b.WriteString(RenderSubtitle("  Press Enter with an empty field to use the registered key file:"))
		b.WriteString("\n")
		b.WriteString(RenderSubtitle("  " + m.DefaultPath))
		b.WriteString("\n\n")
	}

	if m.EntryError != "" {
		b.WriteString(RenderError(m.EntryError))
		b.WriteString("\n")
	}

	return b.String()
}
