package styles

// DarkTheme is the baseline palette for dark appearances.
var DarkTheme = Theme{
	Name: "dark",
	Tokens: ThemeTokens{
		Background: "#0B0F14",
		Panel:      "#121821",
		Text:       "#E6EDF3",
		TextMuted:  "#8B9AAE",
		Border:     "#223043",
		Accent:     "#5B8DEF",
		Focus:      "#7AA2F7",
		Success:    "#3FB950",
		Warning:    "#D29922",
		Error:      "#F85149",
		Info:       "#58A6FF",
	},
}

// LightTheme is the baseline palette for light appearances.
var LightTheme = Theme{
	Name: "light",
	Tokens: ThemeTokens{
		Background: "#FFFFFF",
		Panel:      "#F6F8FA",
		Text:       "#1F2328",
		TextMuted:  "#59636E",
		Border:     "#D1D9E0",
		Accent:     "#0969DA",
		Focus:      "#0550AE",
		Success:    "#1A7F37",
		Warning:    "#9A6700",
		Error:      "#D1242F",
		Info:       "#0969DA",
	},
}
