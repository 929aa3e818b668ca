package components

import (
	"strings"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/opencode-ai/appearances/internal/tui/styles"
)

// RenderAppearanceBadge renders the dark/light and high-contrast flags.
func RenderAppearanceBadge(styleSet styles.Styles, s *appearance.Snapshot) string {
	if s == nil {
		return styleSet.Muted.Render("-")
	}
	parts := []string{"Light"}
	if s.IsDark() {
		parts[0] = "Dark"
	}
	if s.IsHighContrast() {
		parts = append(parts, "High contrast")
	}
	return styleSet.Info.Render("[" + strings.Join(parts, " | ") + "]")
}
