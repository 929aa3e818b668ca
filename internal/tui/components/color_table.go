package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/opencode-ai/appearances/internal/tui/styles"
)

// ColorTable renders a snapshot's named colors, one per line, in name order.
type ColorTable struct {
	Snapshot *appearance.Snapshot
	// Offset is the first row shown.
	Offset int
	// MaxRows limits the rows shown; zero shows all.
	MaxRows int
}

// Rows reports the total number of rows.
func (t ColorTable) Rows() int {
	if t.Snapshot == nil {
		return 0
	}
	return t.Snapshot.Len()
}

// Render returns the visible rows.
func (t ColorTable) Render(styleSet styles.Styles) []string {
	if t.Rows() == 0 {
		return []string{EmptyColors().RenderCompact(styleSet)}
	}

	names := t.Snapshot.ColorNames()
	start := clampInt(t.Offset, 0, len(names))
	end := len(names)
	if t.MaxRows > 0 && start+t.MaxRows < end {
		end = start + t.MaxRows
	}

	width := 0
	for _, name := range names {
		width = max(width, lipgloss.Width(name))
	}

	lines := make([]string, 0, end-start)
	for _, name := range names[start:end] {
		c, _ := t.Snapshot.Color(name)
		lines = append(lines, fmt.Sprintf("%s %s  %s  %s",
			styleSet.Swatch(c),
			styleSet.Text.Render(fmt.Sprintf("%-*s", width, name)),
			styleSet.Accent.Render(c.HexAlpha()),
			styleSet.Muted.Render(c.String()),
		))
	}
	return lines
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
