// Paygo-gen issues offline PAYG keycodes.
//
// It renders authenticated credit, unlock, wipe, factory, and channel tokens
// for keypad devices: full-family codes as *-framed decimal digits and
// small-family codes as fixed-length key sequences. Device message ids are
// tracked in a local registry so each invocation issues a fresh code.
//
// Usage:
//
//	paygo-gen [command] [flags]
//
// Running without arguments launches the interactive wizard.
// See 'paygo-gen --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oduya/paygo/internal/logging"
	"github.com/oduya/paygo/internal/version"
	"github.com/oduya/paygo/internal/wizard/tui"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paygo-gen",
	Short: "Offline PAYG keycode generator",
	Long: `A standalone utility for issuing offline PAYG keycodes.

Keycodes are short authenticated tokens that an operator reads to a customer,
who keys them into a device with no network connection. Full-family devices
take decimal codes framed as *DDD DDD ...#; small-family devices take fixed
sequences of keys 1-5.

If no command is specified, the interactive wizard will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(versionCmd)
}

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch the interactive keycode wizard",
	Long: `Launch the interactive terminal wizard.

The wizard walks through device selection, operation choice, field entry,
and key entry, then displays the issued keycode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paygo-gen %s (commit: %s)\n", version.Version, version.Commit)
	},
}
