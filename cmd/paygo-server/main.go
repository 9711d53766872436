// Paygo-server is the keycode issuing service for back-office use.
//
// It exposes an HTTP JSON endpoint and a WebSocket stream that issue
// authenticated PAYG keycodes on demand. Agents post an operation, a device
// id, and the device key; the server returns the rendered token after
// re-verifying its checksums.
//
// Usage:
//
//	paygo-server server [flags]
//
// See 'paygo-server server --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oduya/paygo/internal/server"
	"github.com/oduya/paygo/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paygo-server",
	Short: "PAYG keycode issuing server",
	Long: `A standalone issuing service for offline PAYG keycodes.

The server renders authenticated keycodes for back-office agents over HTTP
JSON (POST /v1/keycodes) and WebSocket batch sessions (GET /v1/stream).
Device secret keys travel in request bodies, are zeroed after each encode,
and never appear in logs or error responses.

Note: For interactive desk use, the separate 'paygo-gen' utility issues
keycodes locally without running a service.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	certPath string
	keyPath  string
	host     string
	port     int
	logLevel string
	selfSign bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the issuing server",
	Long: `Start the keycode issuing server.

The server runs plain HTTP by default. Provide --cert and --key to serve TLS
from files, or --self-signed to generate an in-memory certificate at startup
(useful for local development; the certificate never touches disk).`,
	Example: `  # Plain HTTP on the default port
  paygo-server server

  # Self-signed TLS on a custom port
  paygo-server server --port 8443 --self-signed --log-level debug

  # TLS with managed certificates
  paygo-server server --cert /path/to/fullchain.pem --key /path/to/privkey.pem`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serverCmd.Flags().StringVar(&host, "host", "", "Server hostname (empty = listen on all interfaces)")
	serverCmd.Flags().IntVar(&port, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serverCmd.Flags().BoolVar(&selfSign, "self-signed", false, "Auto-generate an in-memory self-signed certificate")
}

func runServer(cmd *cobra.Command, args []string) error {
	certProvided := certPath != "" && keyPath != ""

	if (certPath != "" && keyPath == "") || (certPath == "" && keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together")
	}
	if certProvided && selfSign {
		return fmt.Errorf("--self-signed conflicts with --cert/--key")
	}

	if certProvided {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", keyPath)
		}
	}

	config := &server.Config{
		Host:         host,
		Port:         port,
		CertPath:     certPath,
		KeyPath:      keyPath,
		GenerateCert: selfSign,
		LogLevel:     logLevel,
	}

	srv, err := server.New(config)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paygo-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
