package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/opencode-ai/appearances/internal/tui/styles"
)

func formatAppearanceFlags(s *appearance.Snapshot) string {
	label, color := appearanceLabel(s)
	return colorize(label, color)
}

func appearanceLabel(s *appearance.Snapshot) (string, string) {
	switch {
	case s.IsDark() && s.IsHighContrast():
		return "dark, high contrast", colorMagenta
	case s.IsDark():
		return "dark", colorCyan
	case s.IsHighContrast():
		return "light, high contrast", colorYellow
	default:
		return "light", colorGreen
	}
}

// writeSnapshot prints a snapshot for people: a header line and one row per
// color, with swatches when stdout is a color terminal.
func writeSnapshot(out io.Writer, s *appearance.Snapshot) error {
	if _, err := fmt.Fprintf(out, "%s (%s)\n", s.Name(), formatAppearanceFlags(s)); err != nil {
		return err
	}
	if s.Len() == 0 {
		_, err := fmt.Fprintln(out, "  no named colors")
		return err
	}

	swatches := colorEnabled()
	styleSet := styles.FromSnapshot(s)
	rows := make([][]string, 0, s.Len())
	for _, name := range s.ColorNames() {
		c, _ := s.Color(name)
		row := []string{"  " + name, c.HexAlpha(), c.String()}
		if swatches {
			row = append([]string{"  " + styleSet.Swatch(c)}, row...)
		}
		rows = append(rows, row)
	}
	return writeTable(out, nil, rows)
}

func writeNames(out io.Writer, installed, known []string) error {
	isInstalled := make(map[string]bool, len(installed))
	for _, name := range installed {
		isInstalled[name] = true
	}

	seen := make(map[string]bool)
	var rows [][]string
	for _, name := range append(append([]string{}, known...), installed...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		rows = append(rows, []string{name, formatYesNo(isInstalled[name])})
	}
	return writeTable(out, []string{"NAME", "LOADED"}, rows)
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
