package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oduya/paygo/internal/config"
)

// deviceEntry is one selectable row on the device screen
type deviceEntry struct {
	Serial string
	Device *config.Device
}

// deviceKeyMap defines key bindings for the device screen
type deviceKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k deviceKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k deviceKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Manual, k.Quit},
	}
}

// DeviceModel is the device-selection screen. It lists devices from the
// registry and offers a manual-serial path for devices not yet registered.
type DeviceModel struct {
	Registry *config.Registry
	Entries  []deviceEntry
	Cursor   int

	// Manual entry mode
	ManualMode  bool
	SerialInput textinput.Model

	// Result
	Selected       bool
	SelectedSerial string

	Width  int
	Height int

	Help help.Model
	Keys deviceKeyMap
}

// NewDeviceModel creates the device screen from the loaded registry
func NewDeviceModel(registry *config.Registry) DeviceModel {
	serialInput := textinput.New()
	serialInput.Placeholder = "meter-0042"
	serialInput.CharLimit = 64
	serialInput.Width = 32

	keys := deviceKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "manual serial")),
		Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}

	return DeviceModel{
		Registry:    registry,
		Entries:     registryEntries(registry),
		SerialInput: serialInput,
		Help:        help.New(),
		Keys:        keys,
	}
}

// registryEntries flattens the registry's device map into sorted rows
func registryEntries(registry *config.Registry) []deviceEntry {
	if registry == nil {
		return nil
	}
	serials := make([]string, 0, len(registry.Devices))
	for serial := range registry.Devices {
		serials = append(serials, serial)
	}
	sort.Strings(serials)

	entries := make([]deviceEntry, 0, len(serials))
	for _, serial := range serials {
		entries = append(entries, deviceEntry{Serial: serial, Device: registry.Devices[serial]})
	}
	return entries
}

// GetSelectedSerial returns the chosen serial once Selected is set
func (m DeviceModel) GetSelectedSerial() string {
	return m.SelectedSerial
}

// Init implements tea.Model
func (m DeviceModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m DeviceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.ManualMode {
		return m.updateManual(keyMsg)
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Entries)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Entries) == 0 {
			m.ManualMode = true
			m.SerialInput.Focus()
			return m, textinput.Blink
		}
		m.Selected = true
		m.SelectedSerial = m.Entries[m.Cursor].Serial
	case "m":
		m.ManualMode = true
		m.SerialInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// updateManual handles keys while the serial input is focused
func (m DeviceModel) updateManual(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case "enter":
		serial := strings.TrimSpace(m.SerialInput.Value())
		if serial == "" {
			return m, nil
		}
		m.Selected = true
		m.SelectedSerial = serial
		return m, nil
	case "esc":
		m.ManualMode = false
		m.SerialInput.Blur()
		m.SerialInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.SerialInput, cmd = m.SerialInput.Update(keyMsg)
	return m, cmd
}

// View implements tea.Model
func (m DeviceModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildContent builds the device screen content
func (m DeviceModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Select Device"))
	b.WriteString("\n\n")

	if m.ManualMode {
		b.WriteString("Enter the device serial:\n\n")
		b.WriteString("  " + m.SerialInput.View())
		b.WriteString("\n\n")
		b.WriteString(RenderSubtitle("  Unregistered serials are added to the registry on first use."))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.Entries) == 0 {
		b.WriteString(RenderInfo("No devices registered yet.\n\nPress Enter or m to type a serial; it will be saved for next time."))
		b.WriteString("\n")
		return b.String()
	}

	for i, entry := range m.Entries {
		label := entry.Serial
		if entry.Device.Alias != "" {
			label += " (" + entry.Device.Alias + ")"
		}
		label += fmt.Sprintf("  [%s family, next id %d]", entry.Device.Family, entry.Device.NextID)
		b.WriteString(RenderMenuItem(label, i == m.Cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderSubtitle("  m to enter a serial manually"))
	b.WriteString("\n")

	return b.String()
}
