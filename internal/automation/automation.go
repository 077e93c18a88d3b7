package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/san-kum/dicesim/internal/config"
	"github.com/san-kum/dicesim/internal/dice"
	"github.com/san-kum/dicesim/internal/metrics"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScenario = errors.New("automation: scenario has no steps")
	ErrUnknownParam  = errors.New("automation: unknown parameter")
)

// Scenario is a scripted session: key presses fed to a headless scene,
// each followed by a number of frames.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Dice        int            `yaml:"dice"`
	Scatter     *bool          `yaml:"scatter"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep presses every character of Keys in order, then runs Frames
// frames.
type ScenarioStep struct {
	Keys   string `yaml:"keys"`
	Frames int    `yaml:"frames"`
}

type StepResult struct {
	Index  int
	Keys   string
	Frames int
	Params dice.Params
	Phase  dice.Phase
	Dice   []dice.Die
	Energy float64
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyScenario)
	}

	return &scenario, nil
}

// Config layers the scenario's preset and overrides on top of base.
func (s *Scenario) Config(base *config.Config) (*config.Config, error) {
	cfg := base
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
		cfg.Log = base.Log
	}
	cp := *cfg
	cp.Planes = append([]config.PlaneConfig(nil), cfg.Planes...)
	if s.Dice > 0 {
		cp.Dice.Count = s.Dice
	}
	if s.Scatter != nil {
		cp.Scatter.Enabled = *s.Scatter
	}
	return &cp, cp.Validate()
}

// RunScenario executes every step on a fresh scene. A q key ends the
// scenario after the results collected so far.
func RunScenario(ctx context.Context, scenario *Scenario, cfg *config.Config, log *slog.Logger, observe func(int, []dice.Die)) ([]StepResult, error) {
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	if log == nil {
		log = slog.Default()
	}
	scene, err := dice.NewScene(cfg, log)
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		log.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "keys", step.Keys, "frames", step.Frames)

		for _, key := range step.Keys {
			if scene.HandleKey(string(key)) == dice.ActionQuit {
				return results, nil
			}
		}
		if step.Frames > 0 {
			if err := scene.Run(ctx, step.Frames, nil, observe); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		results = append(results, StepResult{
			Index:  i,
			Keys:   step.Keys,
			Frames: scene.FrameCount(),
			Params: scene.Params(),
			Phase:  scene.Phase(),
			Dice:   scene.Dice(),
			Energy: scene.KineticEnergy(),
		})
	}

	return results, nil
}

// ParameterSweep drops the same dice once per value of one drop parameter.
// Points run concurrently on independent scenes, at most Workers at a time
// (NumCPU when zero).
type ParameterSweep struct {
	Param    string
	ParamMin float64
	ParamMax float64
	NumSteps int
	Frames   int
	Workers  int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
}

// SetParam sets a drop parameter by its config name.
func SetParam(p *dice.Params, name string, v float64) error {
	switch name {
	case "x":
		p.PosX = v
	case "y":
		p.PosY = v
	case "z":
		p.PosZ = v
	case "force_x":
		p.ForceX = v
	case "force_y":
		p.ForceY = v
	case "force_z":
		p.ForceZ = v
	case "spin":
		p.Spin = v
	case "frame_gap":
		p.FrameGap = int(v)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, cfg *config.Config, log *slog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if sweep.Frames < 1 {
		return nil, fmt.Errorf("sweep needs at least one frame per point, got %d", sweep.Frames)
	}
	if err := SetParam(&dice.Params{}, sweep.Param, 0); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	workers := sweep.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, sweep.NumSteps)
	errs := make([]error, sweep.NumSteps)
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := 0; i < sweep.NumSteps; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			value := sweep.ParamMin + float64(idx)*paramStep
			results[idx], errs[idx] = sweepPoint(ctx, sweep, cfg, log, value)
			if errs[idx] == nil {
				log.Info("sweep point", "param", sweep.Param, "value", value, "step", idx+1, "of", sweep.NumSteps)
			}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func sweepPoint(ctx context.Context, sweep *ParameterSweep, cfg *config.Config, log *slog.Logger, value float64) (SweepResult, error) {
	scene, err := dice.NewScene(cfg, log)
	if err != nil {
		return SweepResult{}, err
	}
	params := scene.Params()
	_ = SetParam(&params, sweep.Param, value)
	scene.SetParams(params)

	ms := metrics.Defaults()
	if err := scene.Run(ctx, sweep.Frames, nil, metrics.Observer(ms)); err != nil {
		return SweepResult{}, fmt.Errorf("sweep %s=%g: %w", sweep.Param, value, err)
	}
	return SweepResult{ParamValue: value, Metrics: metrics.Results(ms)}, nil
}
