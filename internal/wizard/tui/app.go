package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oduya/paygo/internal/config"
	"github.com/oduya/paygo/internal/logging"
	"github.com/oduya/paygo/internal/message"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDevice  Screen = "device"
	ScreenCommand Screen = "command"
	ScreenFields  Screen = "fields"
	ScreenKey     Screen = "key"
	ScreenResult  Screen = "result"
	ScreenFailure Screen = "failure"
)

// resultKeyMap defines key bindings for the result screen
type resultKeyMap struct {
	Another key.Binding
	Device  key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k resultKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Another, k.Device, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k resultKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Another, k.Device, k.Quit},
	}
}

// failureKeyMap defines key bindings for the failure screen
type failureKeyMap struct {
	Retry  key.Binding
	Device key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k failureKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Device, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k failureKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Retry, k.Device, k.Quit},
	}
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen Screen

	// Screen models
	DeviceModel   DeviceModel
	CommandModel  CommandModel
	FieldsModel   FieldsModel
	KeyEntryModel KeyEntryModel

	// Shared application state
	Registry       *config.Registry
	SelectedSerial string
	PendingCommand wizardCommand
	PendingValues  []uint64
	LastError      error

	// Result state
	IssuedToken string
	IssuedType  string
	IssuedID    uint32
	UsedMsgID   bool

	// UI state
	Width  int
	Height int

	// Help
	Help        help.Model
	ResultKeys  resultKeyMap
	FailureKeys failureKeyMap
}

// NewAppModel creates a new application model starting at the device screen
func NewAppModel(registry *config.Registry) AppModel {
	resultKeys := resultKeyMap{
		Another: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "another keycode")),
		Device:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "change device")),
		Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}

	failureKeys := failureKeyMap{
		Retry:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Device: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "change device")),
		Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}

	return AppModel{
		CurrentScreen: ScreenDevice,
		DeviceModel:   NewDeviceModel(registry),
		Registry:      registry,
		Help:          help.New(),
		ResultKeys:    resultKeys,
		FailureKeys:   failureKeys,
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return m.DeviceModel.Init()
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceModel.Width, m.DeviceModel.Height = msg.Width, msg.Height
		m.CommandModel.Width, m.CommandModel.Height = msg.Width, msg.Height
		m.FieldsModel.Width, m.FieldsModel.Height = msg.Width, msg.Height
		m.KeyEntryModel.Width, m.KeyEntryModel.Height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDevice:
		updated, c := m.DeviceModel.Update(msg)
		m.DeviceModel = updated.(DeviceModel)
		cmd = c

		if m.DeviceModel.Selected {
			m.SelectedSerial = m.DeviceModel.GetSelectedSerial()
			m.Registry.EnsureDevice(m.SelectedSerial)
			return m.transitionTo(ScreenCommand)
		}

		if !m.DeviceModel.ManualMode {
			if keyMsg, ok := msg.(tea.KeyMsg); ok {
				if keyMsg.String() == "q" || keyMsg.String() == "esc" {
					return m, tea.Quit
				}
			}
		}

	case ScreenCommand:
		updated, c := m.CommandModel.Update(msg)
		m.CommandModel = updated.(CommandModel)
		cmd = c

		if m.CommandModel.BackRequested {
			return m.transitionTo(ScreenDevice)
		}
		if m.CommandModel.Selected {
			m.PendingCommand = m.CommandModel.SelectedCommand
			m.PendingValues = nil
			if len(m.PendingCommand.Fields) > 0 {
				return m.transitionTo(ScreenFields)
			}
			return m.afterFields()
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "q" {
			return m, tea.Quit
		}

	case ScreenFields:
		updated, c := m.FieldsModel.Update(msg)
		m.FieldsModel = updated.(FieldsModel)
		cmd = c

		if m.FieldsModel.BackRequested {
			return m.transitionTo(ScreenCommand)
		}
		if m.FieldsModel.Done {
			m.PendingValues = m.FieldsModel.Values
			return m.afterFields()
		}

	case ScreenKey:
		updated, c := m.KeyEntryModel.Update(msg)
		m.KeyEntryModel = updated.(KeyEntryModel)
		cmd = c

		if m.KeyEntryModel.BackRequested {
			if len(m.PendingCommand.Fields) > 0 {
				return m.transitionTo(ScreenFields)
			}
			return m.transitionTo(ScreenCommand)
		}
		if m.KeyEntryModel.Done {
			key := m.KeyEntryModel.Key
			m.KeyEntryModel.Key = nil
			return m.issue(key)
		}

	case ScreenResult:
		return m.handleResultScreen(msg)

	case ScreenFailure:
		return m.handleFailureScreen(msg)
	}

	return m, cmd
}

// afterFields decides where to go once field values are collected: commands
// with well-known keys encode immediately, the rest need the key screen.
func (m AppModel) afterFields() (tea.Model, tea.Cmd) {
	switch m.PendingCommand.Key {
	case keyFactory:
		return m.issue(message.FactoryKey)
	case keyTest:
		return m.issue(message.TestKey)
	default:
		return m.transitionTo(ScreenKey)
	}
}

// issue builds and encodes the pending command, recording the consumed id
// back into the registry on success. Operator-entered key material is zeroed
// before the result screen renders.
func (m AppModel) issue(key []byte) (tea.Model, tea.Cmd) {
	defer func() {
		if m.PendingCommand.Key == keyDevice {
			for i := range key {
				key[i] = 0
			}
		}
	}()

	var id uint32
	if m.PendingCommand.NeedsID {
		id = m.Registry.EnsureDevice(m.SelectedSerial).NextID
	}

	msg, err := m.PendingCommand.Build(id, m.PendingValues)
	if err != nil {
		m.LastError = err
		return m.transitionTo(ScreenFailure)
	}

	token, usedID, err := message.EncodeWithRetry(msg, key, m.Registry.CollisionRetries())
	if err != nil {
		m.LastError = err
		return m.transitionTo(ScreenFailure)
	}

	if m.PendingCommand.NeedsID {
		m.Registry.RecordIssued(m.SelectedSerial, usedID)
		if saveErr := m.Registry.Save(); saveErr != nil {
			logging.Warn(fmt.Sprintf("could not save device registry: %v", saveErr))
		}
	}

	logging.LogKeycodeIssued(msg.Type.String(), usedID, token)

	m.IssuedToken = token
	m.IssuedType = m.PendingCommand.Name
	m.IssuedID = usedID
	m.UsedMsgID = m.PendingCommand.NeedsID
	return m.transitionTo(ScreenResult)
}

// handleResultScreen handles user input on the result screen
func (m AppModel) handleResultScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "n", "enter":
			return m.transitionTo(ScreenCommand)
		case "d":
			return m.transitionTo(ScreenDevice)
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// handleFailureScreen handles user input on the failure screen
func (m AppModel) handleFailureScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "r":
			if len(m.PendingCommand.Fields) > 0 {
				return m.transitionTo(ScreenFields)
			}
			return m.transitionTo(ScreenCommand)
		case "d":
			return m.transitionTo(ScreenDevice)
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	m.CurrentScreen = screen

	var cmd tea.Cmd

	switch screen {
	case ScreenDevice:
		m.DeviceModel = NewDeviceModel(m.Registry)
		m.DeviceModel.Width, m.DeviceModel.Height = m.Width, m.Height
		cmd = m.DeviceModel.Init()

	case ScreenCommand:
		m.CommandModel = NewCommandModel(m.SelectedSerial)
		m.CommandModel.Width, m.CommandModel.Height = m.Width, m.Height
		cmd = m.CommandModel.Init()

	case ScreenFields:
		m.FieldsModel = NewFieldsModel(m.SelectedSerial, m.PendingCommand)
		m.FieldsModel.Width, m.FieldsModel.Height = m.Width, m.Height
		cmd = m.FieldsModel.Init()

	case ScreenKey:
		defaultPath := ""
		if dev := m.Registry.GetDevice(m.SelectedSerial); dev != nil {
			defaultPath = dev.KeyFile
		}
		m.KeyEntryModel = NewKeyEntryModel(m.SelectedSerial, defaultPath)
		m.KeyEntryModel.Width, m.KeyEntryModel.Height = m.Width, m.Height
		cmd = m.KeyEntryModel.Init()
	}

	return m, cmd
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDevice:
		return m.DeviceModel.View()
	case ScreenCommand:
		return m.CommandModel.View()
	case ScreenFields:
		return m.FieldsModel.View()
	case ScreenKey:
		return m.KeyEntryModel.View()
	case ScreenResult:
		return m.renderResultScreen()
	case ScreenFailure:
		return m.renderFailureScreen()
	default:
		return "Unknown screen"
	}
}

// renderResultScreen renders the issued keycode
func (m AppModel) renderResultScreen() string {
	content := m.buildResultContent()
	helpText := m.Help.View(m.ResultKeys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildResultContent builds the result screen content
func (m AppModel) buildResultContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("✓ Keycode Issued"))
	b.WriteString("\n\n")

	b.WriteString(TokenStyle.Render(m.IssuedToken))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  Operation:  %s\n", m.IssuedType))
	b.WriteString(fmt.Sprintf("  Device:     %s\n", m.SelectedSerial))
	if m.UsedMsgID {
		b.WriteString(fmt.Sprintf("  Message id: %d\n", m.IssuedID))
	}
	b.WriteString("\n")

	b.WriteString("What would you like to do next?\n\n")
	b.WriteString(MenuItemStyle.Render("  n/Enter - Issue another keycode"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  d       - Change device"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q       - Exit application"))
	b.WriteString("\n")

	return b.String()
}

// renderFailureScreen renders the failure result screen
func (m AppModel) renderFailureScreen() string {
	content := m.buildFailureContent()
	helpText := m.Help.View(m.FailureKeys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildFailureContent builds the failure screen content
func (m AppModel) buildFailureContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("✗ Keycode Not Issued"))
	b.WriteString("\n\n")

	if m.LastError != nil {
		b.WriteString(ErrorBoxStyle.Render(fmt.Sprintf("Error: %v", m.LastError)))
		b.WriteString("\n\n")
	}

	b.WriteString("Troubleshooting:\n")
	b.WriteString("  • Check the field values are within the allowed ranges\n")
	b.WriteString("  • Verify the key is 16 bytes (32 hex characters)\n")
	b.WriteString("  • Raise the collision retry budget in preferences if ids keep colliding\n\n")

	b.WriteString("What would you like to do?\n\n")
	b.WriteString(MenuItemStyle.Render("  r - Retry with new values"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  d - Change device"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q - Exit application"))
	b.WriteString("\n")

	return b.String()
}

// Run loads the device registry and runs the wizard until the operator quits
func Run() error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("loading device registry: %w", err)
	}

	p := tea.NewProgram(NewAppModel(registry), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
