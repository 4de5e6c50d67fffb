package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsAgentMode reports whether output is being consumed by a non-human agent
// (AILAB_AGENT=1). Agent mode disables markdown rendering and pagers so the
// raw text stays machine-parseable.
func IsAgentMode() bool {
	return os.Getenv("AILAB_AGENT") != ""
}

// ShouldUseColor decides whether to emit ANSI color.
// Precedence: NO_COLOR > CLICOLOR_FORCE > CLICOLOR=0 > TTY detection.
func ShouldUseColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" && os.Getenv("CLICOLOR_FORCE") != "0" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if !IsTerminal() {
		return false
	}
	return termenv.NewOutput(os.Stdout).Profile != termenv.Ascii
}

// ShouldUseEmoji reports whether status icons may use emoji.
// AILAB_NO_EMOJI=1 forces plain ASCII; otherwise follows TTY detection.
func ShouldUseEmoji() bool {
	if os.Getenv("AILAB_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}
