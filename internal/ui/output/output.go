// Package output builds the termenv outputs deja writes terminal text
// through, with one shared rule for when color is allowed.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Detect returns the richest color profile the environment supports.
// NO_COLOR disables color entirely.
func Detect() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// CI caps the profile at 16 colors so logs from non-interactive streams
// stay readable. NO_COLOR still disables color entirely.
func CI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New creates a termenv.Output on w with the profile the selector picks.
// A nil writer falls back to stderr.
func New(w io.Writer, selector func() termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(selector()),
		termenv.WithTTY(true),
	)
	return termenv.NewOutput(w, opts...)
}
