// Package logging provides structured logging for the paygo tools.
//
// It wraps a zap logger with convenience functions for the logging patterns
// used across the CLI, the wizard, and the issuing server.
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean: keycodes are the
// program's product and must not interleave with log lines. Verbosity is
// opted into through the PAYGO_LOG_LEVEL environment variable ("debug",
// "info", "warn", "error") or an explicit Initialize call at server
// startup:
//
//	if err := logging.Initialize("info"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Key hygiene
//
// Secret keys never reach this package. The helpers accept message metadata
// only (family, type, identifier, digit counts); full tokens are logged at
// debug level alone, since a token is a usable credit grant.
//
// # Thread Safety
//
// All functions are safe for concurrent use; zap handles synchronization.
package logging
