package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dicesim/internal/config"
	"github.com/san-kum/dicesim/internal/dice"
	"github.com/san-kum/dicesim/internal/logger"
)

const scenarioYAML = `
name: nudge
description: drop two dice, then move the origin
dice: 2
scatter: false
steps:
  - frames: 40
  - keys: "zz"
    frames: 20
  - keys: "q"
    frames: 10
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "nudge" || len(sc.Steps) != 3 || sc.Steps[1].Keys != "zz" {
		t.Errorf("unexpected scenario %+v", sc)
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); !errors.Is(err, ErrEmptyScenario) {
		t.Errorf("expected ErrEmptyScenario, got %v", err)
	}
}

func TestScenarioConfig(t *testing.T) {
	sc, _ := LoadScenario(writeScenario(t, scenarioYAML))
	base := config.DefaultConfig()
	cfg, err := sc.Config(base)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.Dice.Count != 2 || cfg.Scatter.Enabled {
		t.Errorf("overrides not applied: %+v", cfg.Dice)
	}
	if base.Dice.Count != config.DefaultDice {
		t.Error("base config must not be modified")
	}

	sc.Preset = "missing"
	if _, err := sc.Config(base); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRunScenario(t *testing.T) {
	sc, _ := LoadScenario(writeScenario(t, scenarioYAML))
	cfg, _ := sc.Config(config.DefaultConfig())

	frames := 0
	results, err := RunScenario(context.Background(), sc, cfg, logger.Discard(), func(int, []dice.Die) { frames++ })
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected q to stop after two steps, got %d results", len(results))
	}
	if frames != 60 {
		t.Errorf("expected 60 observed frames, got %d", frames)
	}
	if len(results[0].Dice) != 2 {
		t.Errorf("expected both dice after the first step, got %d", len(results[0].Dice))
	}
	if results[1].Params.PosX != 1.0 || len(results[1].Dice) != 1 {
		t.Errorf("expected restart with origin moved, got %+v dice=%d", results[1].Params, len(results[1].Dice))
	}
}

func TestSetParam(t *testing.T) {
	var p dice.Params
	if err := SetParam(&p, "spin", 2.5); err != nil || p.Spin != 2.5 {
		t.Errorf("spin not set: %v %+v", err, p)
	}
	if err := SetParam(&p, "frame_gap", 7); err != nil || p.FrameGap != 7 {
		t.Errorf("gap not set: %v %+v", err, p)
	}
	if err := SetParam(&p, "colour", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dice.Count = 1
	cfg.Scatter.Enabled = false

	sweep := &ParameterSweep{Param: "y", ParamMin: 1, ParamMax: 3, NumSteps: 3, Frames: 30}
	results, err := RunSweep(context.Background(), sweep, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 || results[1].ParamValue != 2 {
		t.Fatalf("unexpected sweep points %+v", results)
	}
	for i, r := range results {
		if peak := r.Metrics["peak_height"]; peak > r.ParamValue+1e-9 || peak <= 0 {
			t.Errorf("point %d: peak %f should not exceed drop height %f", i, peak, r.ParamValue)
		}
	}

	if _, err := RunSweep(context.Background(), &ParameterSweep{Param: "nope", NumSteps: 1, Frames: 1}, cfg, logger.Discard()); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestRunSweepRejectsEmptyRuns(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		name  string
		sweep ParameterSweep
	}{
		{"no frames", ParameterSweep{Param: "y", NumSteps: 2, Frames: 0}},
		{"negative frames", ParameterSweep{Param: "y", NumSteps: 2, Frames: -5}},
		{"no steps", ParameterSweep{Param: "y", NumSteps: 0, Frames: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := RunSweep(context.Background(), &tt.sweep, cfg, logger.Discard())
			if err == nil || results != nil {
				t.Errorf("expected error, got %v results and %v", results, err)
			}
		})
	}
}

func TestRunSweepSingleWorkerMatchesParallel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dice.Count = 2
	cfg.Drop.FrameGap = 5
	cfg.Scatter.Enabled = false

	serial := &ParameterSweep{Param: "spin", ParamMin: 0, ParamMax: 2, NumSteps: 4, Frames: 40, Workers: 1}
	parallel := *serial
	parallel.Workers = 4

	a, err := RunSweep(context.Background(), serial, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("serial sweep: %v", err)
	}
	b, err := RunSweep(context.Background(), &parallel, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("parallel sweep: %v", err)
	}
	for i := range a {
		if a[i].ParamValue != b[i].ParamValue {
			t.Fatalf("point %d out of order: %f vs %f", i, a[i].ParamValue, b[i].ParamValue)
		}
		for name, v := range a[i].Metrics {
			if b[i].Metrics[name] != v {
				t.Errorf("point %d %s: %f vs %f", i, name, v, b[i].Metrics[name])
			}
		}
	}
}
