package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Open slots: green
	colorAvailable = color.New(color.FgGreen)

	// Booked hours: bold red, they cannot be removed
	colorBooked = color.New(color.FgRed, color.Bold)

	// Below the weekly minimum
	colorWarning = color.New(color.FgYellow, color.Bold)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Totals
	colorStats = color.New(color.FgCyan)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatAvailable(s string) string {
	return colorAvailable.Sprint(s)
}

func formatBooked(s string) string {
	return colorBooked.Sprint(s)
}

func formatWarning(s string) string {
	return colorWarning.Sprint(s)
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatStats(s string) string {
	return colorStats.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
