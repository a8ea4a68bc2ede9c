// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"

	"github.com/muesli/termenv"
)

// OutputMode represents the rendering mode for the application.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModePretty forces colored, glyph-decorated output.
	ModePretty
	// ModePlain forces undecorated output for CI and piped streams.
	ModePlain
)

// DetectEnvironment returns the recommended output mode based on the
// environment. CI, NO_COLOR and non-terminal stdout all select plain output.
func DetectEnvironment() OutputMode {
	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return ModePlain
	}

	if termenv.EnvNoColor() {
		return ModePlain
	}

	// Ascii means stdout is not a terminal or cannot render color.
	if termenv.ColorProfile() == termenv.Ascii {
		return ModePlain
	}

	return ModePretty
}

// ResolveMode applies the user override flag to auto-detection.
// userFlag should be one of: "auto", "pretty", "plain", "ci", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "pretty":
		return ModePretty
	case "plain", "ci":
		return ModePlain
	case "auto", "":
		return autoDetected
	default:
		return autoDetected
	}
}
