package styles

// HighContrastTheme is used for dark high-contrast appearances.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Tokens: ThemeTokens{
		Background: "#000000",
		Panel:      "#0A0A0A",
		Text:       "#FFFFFF",
		TextMuted:  "#C0C0C0",
		Border:     "#FFFFFF",
		Accent:     "#00A2FF",
		Focus:      "#FFD400",
		Success:    "#00FF5A",
		Warning:    "#FFB000",
		Error:      "#FF4040",
		Info:       "#66CCFF",
	},
}

// HighContrastLightTheme is used for light high-contrast appearances.
var HighContrastLightTheme = Theme{
	Name: "high-contrast-light",
	Tokens: ThemeTokens{
		Background: "#FFFFFF",
		Panel:      "#FFFFFF",
		Text:       "#000000",
		TextMuted:  "#303030",
		Border:     "#000000",
		Accent:     "#0030B0",
		Focus:      "#7A00B0",
		Success:    "#005A1E",
		Warning:    "#6B3A00",
		Error:      "#A00000",
		Info:       "#003A8C",
	},
}
