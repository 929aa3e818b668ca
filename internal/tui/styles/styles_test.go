package styles

import (
	"testing"

	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *appearance.Snapshot {
	t.Helper()
	s, err := appearance.Parse(text)
	require.NoError(t, err)
	return s
}

func TestBaseTheme(t *testing.T) {
	assert.Equal(t, DarkTheme.Name, BaseTheme(true, false).Name)
	assert.Equal(t, LightTheme.Name, BaseTheme(false, false).Name)
	assert.Equal(t, HighContrastTheme.Name, BaseTheme(true, true).Name)
	assert.Equal(t, HighContrastLightTheme.Name, BaseTheme(false, true).Name)
	assert.Len(t, Themes, 4)
}

func TestThemeFromSnapshotWithoutColors(t *testing.T) {
	theme := ThemeFromSnapshot(mustParse(t, "Appearance: NSAppearanceNameAqua\n"))
	assert.Equal(t, appearance.Aqua, theme.Name)
	assert.Equal(t, LightTheme.Tokens, theme.Tokens)

	theme = ThemeFromSnapshot(mustParse(t, "Appearance: NSAppearanceNameDarkAqua HighContrast\n"))
	assert.Equal(t, HighContrastTheme.Tokens, theme.Tokens)

	assert.Equal(t, DarkTheme, ThemeFromSnapshot(nil))
}

func TestThemeFromSnapshotOverridesTokens(t *testing.T) {
	s := mustParse(t, "Appearance: NSAppearanceNameDarkAqua\n"+
		"windowBackgroundColor: 0 0 0 1\n"+
		"labelColor: 1 1 1 1\n"+
		"controlAccentColor: 1 0 0 1\n")
	theme := ThemeFromSnapshot(s)

	assert.Equal(t, "#000000", theme.Tokens.Background)
	assert.Equal(t, "#ffffff", theme.Tokens.Text)
	assert.Equal(t, "#ff0000", theme.Tokens.Accent)
	assert.Equal(t, DarkTheme.Tokens.Success, theme.Tokens.Success)
	assert.NotEqual(t, DarkTheme.Tokens.Panel, theme.Tokens.Panel)
	assert.NotEqual(t, theme.Tokens.Background, theme.Tokens.Panel)
}

func TestTranslucentColorsAreFlattened(t *testing.T) {
	s := mustParse(t, "Appearance: NSAppearanceNameDarkAqua\n"+
		"windowBackgroundColor: 0 0 0 1\n"+
		"secondaryLabelColor: 1 1 1 0.5\n")
	theme := ThemeFromSnapshot(s)
	assert.Equal(t, "#808080", theme.Tokens.TextMuted)
}

func TestFromSnapshotBuildsStyles(t *testing.T) {
	s := mustParse(t, "Appearance: NSAppearanceNameAqua\nlabelColor: 0 0 0 1\n")
	st := FromSnapshot(s)
	assert.Equal(t, appearance.Aqua, st.Theme.Name)
	assert.NotEmpty(t, st.Title.Render("x"))
	assert.NotEmpty(t, st.Swatch(appearance.NewColor(1, 0, 0, 1)))
}
