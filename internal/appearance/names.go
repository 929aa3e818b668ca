package appearance

// Standard macOS appearance names. The registry accepts any name; these are
// the ones the system is known to produce.
const (
	// Aqua is the original light appearance.
	Aqua = "NSAppearanceNameAqua"
	// DarkAqua is the dark system appearance introduced in macOS 10.14.
	DarkAqua = "NSAppearanceNameDarkAqua"
	// VibrantLight is a light vibrant appearance used in specific situations.
	VibrantLight = "NSAppearanceNameVibrantLight"
	// VibrantDark is a dark vibrant appearance used in specific situations.
	VibrantDark = "NSAppearanceNameVibrantDark"
)

// KnownNames lists the standard appearance names.
func KnownNames() []string {
	return []string{Aqua, DarkAqua, VibrantLight, VibrantDark}
}
