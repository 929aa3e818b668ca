// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/appearances/internal/tui/styles"
)

// EmptyState represents an empty state message with optional suggestions.
type EmptyState struct {
	// Icon is an optional icon to display.
	Icon string
	// Title is the main empty state message.
	Title string
	// Subtitle is an optional secondary message.
	Subtitle string
	// Suggestions are actionable commands the user can run.
	Suggestions []Suggestion
}

// Suggestion represents a suggested command with description.
type Suggestion struct {
	// Command is the CLI command or key to use.
	Command string
	// Description explains what the command does.
	Description string
}

// Render renders the empty state with the given styles.
func (e EmptyState) Render(styleSet styles.Styles) string {
	var lines []string

	titleLine := e.Title
	if e.Icon != "" {
		titleLine = e.Icon + "  " + titleLine
	}
	lines = append(lines, styleSet.Muted.Render(titleLine))

	if e.Subtitle != "" {
		lines = append(lines, styleSet.Muted.Render(e.Subtitle))
	}

	if len(e.Suggestions) > 0 {
		lines = append(lines, "")
		lines = append(lines, styleSet.Text.Render("Try:"))
		for _, s := range e.Suggestions {
			cmdLine := fmt.Sprintf("  %s", styleSet.Accent.Render(s.Command))
			if s.Description != "" {
				cmdLine += styleSet.Muted.Render(fmt.Sprintf("  # %s", s.Description))
			}
			lines = append(lines, cmdLine)
		}
	}

	return strings.Join(lines, "\n")
}

// RenderCompact renders a compact single-line empty state.
func (e EmptyState) RenderCompact(styleSet styles.Styles) string {
	line := e.Title
	if e.Icon != "" {
		line = e.Icon + " " + line
	}
	if len(e.Suggestions) > 0 {
		line += fmt.Sprintf(" Try: %s", e.Suggestions[0].Command)
	}
	return styleSet.Muted.Render(line)
}

// EmptyLoading is shown before the first snapshot arrives.
func EmptyLoading() EmptyState {
	return EmptyState{
		Icon:  "…",
		Title: "Loading appearance",
	}
}

// EmptyBridgeUnavailable is shown when the native bridge failed to start.
func EmptyBridgeUnavailable() EmptyState {
	return EmptyState{
		Icon:     "!",
		Title:    "Native bridge unavailable",
		Subtitle: "The appearance helper could not be started.",
		Suggestions: []Suggestion{
			{Command: "appearances --log-level debug effective", Description: "show why the bridge failed"},
			{Command: "bridge.kind: directory", Description: "read snapshots from files instead"},
		},
	}
}

// EmptyAppearanceUnavailable is shown when no data exists for name.
func EmptyAppearanceUnavailable(name string) EmptyState {
	title := "Appearance unavailable"
	if name != "" {
		title = fmt.Sprintf("No data for %s", name)
	}
	return EmptyState{
		Icon:     "?",
		Title:    title,
		Subtitle: "The native layer has no appearance by that name.",
		Suggestions: []Suggestion{
			{Command: "r", Description: "retry"},
		},
	}
}

// EmptyColors is shown for a snapshot without named colors.
func EmptyColors() EmptyState {
	return EmptyState{
		Title:    "No named colors",
		Subtitle: "Appearance data carried no colors; defaults apply.",
	}
}
