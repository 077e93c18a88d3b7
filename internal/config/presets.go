package config

import "sort"

// Presets tweak the defaults into named starting points.
var Presets = map[string]func(*Config){
	"classic": func(*Config) {},
	"gentle": func(c *Config) {
		c.Drop.Y = 2.0
		c.Drop.ForceX = 200
		c.Drop.Spin = 0.25
		c.Drop.FrameGap = 40
		c.Scatter.Enabled = false
	},
	"spinner": func(c *Config) {
		c.Drop.Spin = 3.7
		c.Drop.ForceX = 600
		c.Drop.ForceZ = 400
		c.Contact.Bounce = 0.5
	},
	"barrage": func(c *Config) {
		c.Dice.Count = 20
		c.Drop.FrameGap = 6
		c.Drop.X = -1.0
		c.Drop.ForceX = 1500
	},
	"still": func(c *Config) {
		c.Drop.ForceX = 0
		c.Drop.Spin = 0
		c.Contact.Bounce = 0
		c.Scatter.Enabled = false
	},
}

// PresetInfo is a one-line description of each preset.
var PresetInfo = map[string]string{
	"classic": "six dice thrown sideways, then scattered and pulled back",
	"gentle":  "low, slow drops that just settle",
	"spinner": "fast spin and a diagonal throw onto a bouncy floor",
	"barrage": "twenty dice in quick succession",
	"still":   "dice dropped straight down without spin or bounce",
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
