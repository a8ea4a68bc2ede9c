// Package logger implements the application logger on log/slog: a colored
// console handler for humans, slog's JSONHandler for machines, and
// hierarchical rendering of zerr chains either way.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/deja/internal/core/ports"
)

// Logger implements ports.Logger. The zero value is not usable; construct
// with New.
type Logger struct {
	mu   sync.RWMutex
	out  io.Writer
	json bool
	log  *slog.Logger
}

// New creates a logger writing human-readable output to stderr.
func New() ports.Logger {
	l := &Logger{out: os.Stderr}
	l.log = slog.New(l.handler())
	return l
}

// handler builds the slog handler for the current destination and mode.
func (l *Logger) handler() slog.Handler {
	if l.json {
		return slog.NewJSONHandler(l.out, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return newConsoleHandler(l.out, slog.LevelInfo)
}

// SetOutput redirects log output. Passing nil restores stderr. The current
// mode is kept.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.out = w
	l.log = slog.New(l.handler())
}

// SetJSON switches between JSON and console output, keeping the destination.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.json = enable
	l.log = slog.New(l.handler())
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Warn(msg)
}

// Error logs an error. Console mode renders the zerr chain hierarchically
// with its metadata; JSON mode logs the error structurally and leaves
// rendering to zerr's JSON marshaling.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.json {
		l.log.Error("operation failed", "error", err)
		return
	}
	l.log.Error(renderChain(splitChain(err)))
}
