// Package detector decides whether output is styled for a terminal or kept
// plain for pipes and CI logs.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is how tabular output is rendered.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeStyled renders lipgloss tables.
	ModeStyled
	// ModePlain renders tab-separated lines.
	ModePlain
)

// DetectEnvironment returns ModeStyled when stdout is a terminal outside CI.
func DetectEnvironment() OutputMode {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModePlain
	}
	return ModeStyled
}

// ResolveMode applies the user's --output flag to auto-detection.
// userFlag should be one of: "auto", "styled", "plain", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "styled":
		return ModeStyled
	case "plain":
		return ModePlain
	default:
		return autoDetected
	}
}
