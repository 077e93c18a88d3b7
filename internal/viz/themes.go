package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines the colour scheme shared by the terminal and desktop
// viewports.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Dice       lipgloss.Color
	Floor      lipgloss.Color
	Warning    lipgloss.Color
}

var (
	ThemeFelt = Theme{
		Name:       "felt",
		Primary:    lipgloss.Color("#f5f0e1"),
		Secondary:  lipgloss.Color("#c9b27c"),
		Accent:     lipgloss.Color("#ffcc33"),
		Background: lipgloss.Color("#0b3d2e"),
		Text:       lipgloss.Color("#f5f0e1"),
		Muted:      lipgloss.Color("#5f8f7a"),
		Dice:       lipgloss.Color("#ffffff"),
		Floor:      lipgloss.Color("#2e6b52"),
		Warning:    lipgloss.Color("#ff6b4a"),
	}

	ThemeCyberpunk = Theme{
		Name:       "cyberpunk",
		Primary:    lipgloss.Color("#ff00ff"),
		Secondary:  lipgloss.Color("#00ffff"),
		Accent:     lipgloss.Color("#ffff00"),
		Background: lipgloss.Color("#0a0a0a"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#666666"),
		Dice:       lipgloss.Color("#00ffff"),
		Floor:      lipgloss.Color("#442244"),
		Warning:    lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Primary:    lipgloss.Color("#00ff00"),
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
		Dice:       lipgloss.Color("#88ff88"),
		Floor:      lipgloss.Color("#003300"),
		Warning:    lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Primary:    lipgloss.Color("#ffffff"),
		Secondary:  lipgloss.Color("#cccccc"),
		Accent:     lipgloss.Color("#0088ff"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#888888"),
		Dice:       lipgloss.Color("#ffffff"),
		Floor:      lipgloss.Color("#333333"),
		Warning:    lipgloss.Color("#ffaa00"),
	}

	ThemeSunset = Theme{
		Name:       "sunset",
		Primary:    lipgloss.Color("#ff6b6b"),
		Secondary:  lipgloss.Color("#feca57"),
		Accent:     lipgloss.Color("#ff9ff3"),
		Background: lipgloss.Color("#2d1b2e"),
		Text:       lipgloss.Color("#fff5f5"),
		Muted:      lipgloss.Color("#8b6b8c"),
		Dice:       lipgloss.Color("#feca57"),
		Floor:      lipgloss.Color("#4a2e4b"),
		Warning:    lipgloss.Color("#ff4757"),
	}

	CurrentTheme = ThemeFelt

	Themes = []Theme{
		ThemeFelt,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return CurrentTheme
		}
	}
	CurrentTheme = Themes[0]
	return CurrentTheme
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// RGB splits a theme colour into 8-bit channels. Unparseable colours come
// back white.
func RGB(c lipgloss.Color) (r, g, b uint8) {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return 255, 255, 255
	}
	return col.Clamped().RGB255()
}

// Blend mixes two theme colours in Lab space; t = 0 gives a.
func Blend(a, b lipgloss.Color, t float64) lipgloss.Color {
	ca, errA := colorful.Hex(string(a))
	cb, errB := colorful.Hex(string(b))
	if errA != nil || errB != nil {
		return a
	}
	return lipgloss.Color(ca.BlendLab(cb, t).Clamped().Hex())
}
