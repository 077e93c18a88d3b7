package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDice     = 6
	DefaultDieSize  = 0.2
	DefaultDensity  = 1000.0
	DefaultFPS      = 60
	DefaultSubsteps = 2
	DefaultFrameGap = 20
	DefaultWidth    = 1024
	DefaultHeight   = 768
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Dice    DiceConfig    `yaml:"dice"`
	Drop    DropConfig    `yaml:"drop"`
	World   WorldConfig   `yaml:"world"`
	Contact ContactConfig `yaml:"contact"`
	Scatter ScatterConfig `yaml:"scatter"`
	Planes  []PlaneConfig `yaml:"planes"`
	View    ViewConfig    `yaml:"view"`
	Log     LogConfig     `yaml:"log"`
}

type DiceConfig struct {
	Count   int     `yaml:"count"`
	Size    float64 `yaml:"size"`
	Density float64 `yaml:"density"`
}

// DropConfig holds the initial values of the parameters the keyboard adjusts.
type DropConfig struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Z        float64 `yaml:"z"`
	ForceX   float64 `yaml:"force_x"`
	ForceY   float64 `yaml:"force_y"`
	ForceZ   float64 `yaml:"force_z"`
	Spin     float64 `yaml:"spin"`
	FrameGap int     `yaml:"frame_gap"`
}

type WorldConfig struct {
	Gravity    [3]float64 `yaml:"gravity"`
	ERP        float64    `yaml:"erp"`
	CFM        float64    `yaml:"cfm"`
	FPS        int        `yaml:"fps"`
	Substeps   int        `yaml:"substeps"`
	Iterations int        `yaml:"iterations"`
}

type ContactConfig struct {
	Bounce      float64 `yaml:"bounce"`
	Mu          float64 `yaml:"mu"`
	MaxContacts int     `yaml:"max_contacts"`
}

// ScatterConfig drives the explosion and pull-back phase that follows the
// last drop. Frame numbers count from the moment the phase starts.
type ScatterConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ExplodeAt   int     `yaml:"explode_at"`
	PullAfter   int     `yaml:"pull_after"`
	RewindAt    int     `yaml:"rewind_at"`
	RewindTo    int     `yaml:"rewind_to"`
	Strength    float64 `yaml:"strength"`
	Falloff     float64 `yaml:"falloff"`
	Pull        float64 `yaml:"pull"`
	Thrust      float64 `yaml:"thrust"`
	ThrustEvery int     `yaml:"thrust_every"`
}

// PlaneConfig is a static plane normal.p = offset.
type PlaneConfig struct {
	Normal [3]float64 `yaml:"normal"`
	Offset float64    `yaml:"offset"`
}

type ViewConfig struct {
	FOV    float64    `yaml:"fov"`
	Near   float64    `yaml:"near"`
	Far    float64    `yaml:"far"`
	Eye    [3]float64 `yaml:"eye"`
	Target [3]float64 `yaml:"target"`
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Dice: DiceConfig{Count: DefaultDice, Size: DefaultDieSize, Density: DefaultDensity},
		Drop: DropConfig{Y: 5.0, ForceX: 1000, Spin: 1.1, FrameGap: DefaultFrameGap},
		World: WorldConfig{
			Gravity:    [3]float64{0, -9.81, 0},
			ERP:        0.8,
			CFM:        1e-5,
			FPS:        DefaultFPS,
			Substeps:   DefaultSubsteps,
			Iterations: 20,
		},
		Contact: ContactConfig{Bounce: 0.2, Mu: 5000, MaxContacts: 8},
		Scatter: ScatterConfig{
			Enabled:     true,
			ExplodeAt:   100,
			PullAfter:   300,
			RewindAt:    500,
			RewindTo:    20,
			Strength:    40000,
			Falloff:     0.2,
			Pull:        1000,
			Thrust:      10000,
			ThrustEvery: 60,
		},
		Planes: []PlaneConfig{
			{Normal: [3]float64{0, 1, 0}, Offset: 0},
			{Normal: [3]float64{1, 1, 0}, Offset: -DefaultWidth / 2},
			{Normal: [3]float64{-1, -1, 0}, Offset: -DefaultWidth / 2},
		},
		View: ViewConfig{
			FOV:    45,
			Near:   0.2,
			Far:    20,
			Eye:    [3]float64{0.5, 3.6, 4.8},
			Target: [3]float64{0.5, 0.5, 0},
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads path over a copy of base, so keys missing from the file
// keep base's values. base is not modified.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	cfg.Planes = append([]PlaneConfig(nil), base.Planes...)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dt is the length of one frame in seconds.
func (c *Config) Dt() float64 {
	return 1.0 / float64(c.World.FPS)
}

func (c *Config) Validate() error {
	switch {
	case c.Dice.Count < 1:
		return invalid("dice.count must be at least 1, got %d", c.Dice.Count)
	case c.Dice.Size <= 0:
		return invalid("dice.size must be positive, got %g", c.Dice.Size)
	case c.Dice.Density <= 0:
		return invalid("dice.density must be positive, got %g", c.Dice.Density)
	case c.Drop.FrameGap < 1:
		return invalid("drop.frame_gap must be at least 1, got %d", c.Drop.FrameGap)
	case c.World.FPS < 1:
		return invalid("world.fps must be at least 1, got %d", c.World.FPS)
	case c.World.Substeps < 1:
		return invalid("world.substeps must be at least 1, got %d", c.World.Substeps)
	case c.World.ERP < 0 || c.World.ERP > 1:
		return invalid("world.erp must be in [0, 1], got %g", c.World.ERP)
	case c.World.CFM < 0:
		return invalid("world.cfm must not be negative, got %g", c.World.CFM)
	case c.Contact.Bounce < 0 || c.Contact.Bounce > 1:
		return invalid("contact.bounce must be in [0, 1], got %g", c.Contact.Bounce)
	case c.Contact.Mu < 0:
		return invalid("contact.mu must not be negative, got %g", c.Contact.Mu)
	case c.View.Near <= 0 || c.View.Far <= c.View.Near:
		return invalid("view.near/far must satisfy 0 < near < far, got %g/%g", c.View.Near, c.View.Far)
	case c.View.FOV <= 0 || c.View.FOV >= 180:
		return invalid("view.fov must be in (0, 180), got %g", c.View.FOV)
	}
	if s := c.Scatter; s.Enabled {
		if s.ExplodeAt < 1 || s.RewindAt <= s.RewindTo || s.RewindTo < 0 {
			return invalid("scatter frames must satisfy explode_at >= 1 and 0 <= rewind_to < rewind_at")
		}
		if s.ThrustEvery < 1 {
			return invalid("scatter.thrust_every must be at least 1, got %d", s.ThrustEvery)
		}
	}
	for i, p := range c.Planes {
		if p.Normal == [3]float64{} {
			return invalid("planes[%d].normal must not be zero", i)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
