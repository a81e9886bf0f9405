package render

// Style names accepted in configuration. Most map directly onto glamour's
// built-in styles; aliases are resolved in resolveStyle.
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleTokyoNight = "tokyonight"
	StyleDracula    = "dracula"
	StyleNotty      = "notty"
	StyleASCII      = "ascii"
)

// styleAliases maps configuration names onto glamour style names
var styleAliases = map[string]string{
	StyleTokyoNight: "tokyo-night",
}

// resolveStyle translates a configured style name to the glamour style
// path. Unknown names pass through so custom JSON theme paths keep working.
func resolveStyle(style string) string {
	if resolved, ok := styleAliases[style]; ok {
		return resolved
	}
	return style
}

// IsBuiltinStyle reports whether the style names a bundled glamour style
func IsBuiltinStyle(style string) bool {
	switch style {
	case StyleDark, StyleLight, StyleTokyoNight, StyleDracula, StyleNotty, StyleASCII:
		return true
	default:
		return false
	}
}

// StyleInfo describes one selectable markdown style
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles returns the styles offered in the settings menu
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark theme (default)"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StyleLight, Description: "Light theme for bright terminals"},
		{Name: StyleNotty, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}

// StyleNames returns just the style names for selection
func StyleNames() []string {
	styles := AvailableStyles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = s.Name
	}
	return names
}
