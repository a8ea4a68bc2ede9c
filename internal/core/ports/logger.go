package ports

import "io"

// Logger is the application-level logging interface.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Info logs an informational message.
	Info(msg string)

	// Warn logs a warning message.
	Warn(msg string)

	// Error logs an error, rendering structured error chains when available.
	Error(err error)

	// SetOutput redirects log output. Passing nil restores stderr.
	SetOutput(w io.Writer)

	// SetJSON switches between JSON and human-readable output.
	SetJSON(enable bool)
}
