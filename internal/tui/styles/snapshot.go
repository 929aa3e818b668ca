package styles

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/opencode-ai/appearances/internal/appearance"
)

// colorRoles maps appearance color names onto the tokens they override.
var colorRoles = []struct {
	color string
	set   func(*ThemeTokens, string)
}{
	{"windowBackgroundColor", func(t *ThemeTokens, v string) { t.Background = v }},
	{"labelColor", func(t *ThemeTokens, v string) { t.Text = v }},
	{"secondaryLabelColor", func(t *ThemeTokens, v string) { t.TextMuted = v }},
	{"separatorColor", func(t *ThemeTokens, v string) { t.Border = v }},
	{"controlAccentColor", func(t *ThemeTokens, v string) { t.Accent = v }},
	{"keyboardFocusIndicatorColor", func(t *ThemeTokens, v string) { t.Focus = v }},
	{"systemGreenColor", func(t *ThemeTokens, v string) { t.Success = v }},
	{"systemOrangeColor", func(t *ThemeTokens, v string) { t.Warning = v }},
	{"systemRedColor", func(t *ThemeTokens, v string) { t.Error = v }},
	{"systemBlueColor", func(t *ThemeTokens, v string) { t.Info = v }},
}

// panelBlend is how far the panel color moves from the background toward
// the text color.
const panelBlend = 0.06

// ThemeFromSnapshot derives a theme from an appearance: the built-in palette
// matching its dark and high-contrast flags, with every token the snapshot
// supplies a color for replaced by that color. Colors are flattened to opaque
// values since terminals have no alpha.
func ThemeFromSnapshot(s *appearance.Snapshot) Theme {
	if s == nil {
		return DarkTheme
	}
	theme := BaseTheme(s.IsDark(), s.IsHighContrast())
	theme.Name = s.Name()

	tokens := theme.Tokens
	for _, role := range colorRoles {
		if c, ok := s.Color(role.color); ok {
			role.set(&tokens, flatten(c, tokens.Background))
		}
	}

	_, hasBackground := s.Color("windowBackgroundColor")
	_, hasLabel := s.Color("labelColor")
	if hasBackground || hasLabel {
		tokens.Panel = blend(tokens.Background, tokens.Text, panelBlend)
	}

	theme.Tokens = tokens
	return theme
}

// FromSnapshot builds lipgloss styles for an appearance.
func FromSnapshot(s *appearance.Snapshot) Styles {
	return BuildStyles(ThemeFromSnapshot(s))
}

// flatten composites c over the background hex color.
func flatten(c appearance.Color, background string) string {
	if c.A >= 1 {
		return c.Hex()
	}
	bg, err := colorful.Hex(background)
	if err != nil {
		return c.Hex()
	}
	return bg.BlendRgb(c.Colorful(), float64(c.A)).Clamped().Hex()
}

func blend(from, to string, t float64) string {
	a, err := colorful.Hex(from)
	if err != nil {
		return from
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return from
	}
	return a.BlendLab(b, t).Clamped().Hex()
}
