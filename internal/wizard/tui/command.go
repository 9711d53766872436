package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// commandKeyMap defines key bindings for the command screen
type commandKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k commandKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k commandKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Back, k.Quit},
	}
}

// CommandModel is the operation-selection screen. It renders the command
// catalog grouped by family with a single cursor over the flat list.
type CommandModel struct {
	Serial   string
	Commands []wizardCommand
	Cursor   int

	// Result
	Selected        bool
	SelectedCommand wizardCommand
	BackRequested   bool

	Width  int
	Height int

	Help help.Model
	Keys commandKeyMap
}

// NewCommandModel creates the command screen for the selected device
func NewCommandModel(serial string) CommandModel {
	keys := commandKeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:  key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}

	return CommandModel{
		Serial:   serial,
		Commands: commandCatalog,
		Help:     help.New(),
		Keys:     keys,
	}
}

// Init implements tea.Model
func (m CommandModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m CommandModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Commands)-1 {
			m.Cursor++
		}
	case "enter":
		m.Selected = true
		m.SelectedCommand = m.Commands[m.Cursor]
	case "esc":
		m.BackRequested = true
	}

	return m, nil
}

// View implements tea.Model
func (m CommandModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildContent builds the command screen content
func (m CommandModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Select Operation"))
	b.WriteString(RenderSubtitle("  Device: " + m.Serial))
	b.WriteString("\n\n")

	family := ""
	for i, cmd := range m.Commands {
		if cmd.Family != family {
			if family != "" {
				b.WriteString("\n")
			}
			family = cmd.Family
			b.WriteString(MenuSectionStyle.Render(family))
			b.WriteString("\n")
		}
		b.WriteString(RenderMenuItem(cmd.Name, i == m.Cursor))
		b.WriteString("\n")
	}

	return b.String()
}
