package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmDangerousOperation displays a warning box and prompts the user to type
// "I AGREE" to proceed with a dangerous operation. Returns true if the user
// confirmed, false otherwise.
func ConfirmDangerousOperation(title string, warnings []string, disclaimer string) bool {
	width := GetTerminalWidth()
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string

	titleLine := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true).
		Render(fmt.Sprintf("   ⚠  WARNING  ─  %s", title))
	lines = append(lines, "")
	lines = append(lines, titleLine)
	lines = append(lines, "")

	for _, warning := range warnings {
		bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	if disclaimer != "" {
		disclaimerStyle := lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width - 12).
			PaddingLeft(3)
		lines = append(lines, disclaimerStyle.Render(disclaimer))
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(content)

	fmt.Println(box)
	fmt.Println()

	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	fmt.Print(promptStyle.Render("To proceed, type \"I AGREE\" and press Enter: "))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return false
	}

	input = strings.TrimSpace(input)
	if input == "I AGREE" {
		fmt.Println()
		return true
	}

	fmt.Println()
	cancelStyle := lipgloss.NewStyle().Foreground(MutedColor)
	fmt.Println(cancelStyle.Render("  Operation cancelled."))
	fmt.Println()
	return false
}

// WipeStateConfirmation is a pre-configured confirmation for wipe-state keycodes
func WipeStateConfirmation() bool {
	return ConfirmDangerousOperation(
		"WIPE STATE KEYCODE",
		[]string{
			"This keycode erases PAYG state on the device that accepts it",
			"Wiping message IDs lets previously issued keycodes be replayed",
			"Remaining credit on the device may be lost",
			"The keycode cannot be recalled once handed to an operator",
		},
		"By proceeding, you acknowledge that entering this keycode on a device "+
			"irreversibly resets the selected state and that any credit or replay "+
			"protection it clears cannot be restored without reprovisioning.",
	)
}

// FactoryConfirmation is a pre-configured confirmation for factory keycodes,
// which authenticate against the well-known all-zeros key.
func FactoryConfirmation() bool {
	return ConfirmDangerousOperation(
		"FACTORY KEYCODE",
		[]string{
			"Factory keycodes use a fixed, publicly known key",
			"Production devices should reject them once provisioned",
			"Only use these codes on the factory line or on test units",
		},
		"",
	)
}
