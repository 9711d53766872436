// Package ui provides terminal UI components for the paygo-gen CLI.
//
// This package uses Lipgloss to render polished terminal output for keycode
// generation commands. Unlike the interactive TUI wizard, these components
// follow a "run once and exit" pattern - they render output compellingly but
// don't require user interaction.
//
// # Architecture
//
// The UI package provides four main component types:
//
//   - Header: Command banner showing operation name and parameters
//   - Token: A prominent box displaying an issued keycode
//   - Result: Success/failure boxes with styled information
//   - Confirm: Typed confirmation prompts for destructive operations
//
// Keycode tokens get their own box style because they are the whole point of
// the tool: the operator reads the token off the screen and keys it into a
// device, so it is rendered large, grouped, and visually separated from the
// surrounding metadata.
//
// # Logging Integration
//
// This package expects logging to be controlled via the PAYGO_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set PAYGO_LOG_LEVEL to
// "debug", "info", "warn", or "error" to enable logging output.
package ui
