// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Shared palette, tuned for dark terminal backgrounds. Every command pulls
// its colors from here so listings, cards, and errors stay consistent.
const (
	// ColorPrimary (purple): titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted (gray): secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess (green): positive outcomes.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError (red): failures.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning (amber): caution states.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight (blue): command names and other interactive elements.
	ColorHighlight = lipgloss.Color("#3B82F6")

	// ColorVerbose (light gray): trace and debug detail.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

// Styles built from the palette. Extend with margins or padding at the
// call site rather than adding variants here.
var (
	// TitleStyle marks primary headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle marks secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle marks success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle marks error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle marks warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle marks command names and code fragments.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// VerboseStyle marks step traces and supplementary detail.
	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	// VerboseHighlightStyle emphasizes items inside verbose output.
	VerboseHighlightStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight)
)
