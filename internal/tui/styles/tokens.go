// Package styles maps appearance snapshots onto terminal styles.
package styles

// ThemeTokens defines the semantic color roles used by the terminal views.
type ThemeTokens struct {
	Background string
	Panel      string
	Text       string
	TextMuted  string
	Border     string
	Accent     string
	Focus      string
	Success    string
	Warning    string
	Error      string
	Info       string
}

// Theme bundles a palette with a name.
type Theme struct {
	Name   string
	Tokens ThemeTokens
}

// Themes lists the built-in palettes by name.
var Themes = map[string]Theme{
	DarkTheme.Name:              DarkTheme,
	LightTheme.Name:             LightTheme,
	HighContrastTheme.Name:      HighContrastTheme,
	HighContrastLightTheme.Name: HighContrastLightTheme,
}

// BaseTheme picks the built-in palette matching an appearance's flags.
func BaseTheme(dark, highContrast bool) Theme {
	switch {
	case dark && highContrast:
		return HighContrastTheme
	case dark:
		return DarkTheme
	case highContrast:
		return HighContrastLightTheme
	default:
		return LightTheme
	}
}
