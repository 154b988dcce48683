// Package logging configures the process-wide slog logger: JSON on stdout,
// optionally fanned out to the system_logs table for error-severity records.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs the default JSON logger at Info level. main replaces it
// once the database handler is available.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}
