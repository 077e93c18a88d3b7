package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func subcommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find([]string{name})
	if err != nil || cmd.Name() != name {
		t.Fatalf("no %s command: %v", name, err)
	}
	return cmd
}

func TestFrameDefaultsPerCommand(t *testing.T) {
	root := newRootCmd()

	if runFrames != 600 {
		t.Errorf("run frames default: got %d, want 600", runFrames)
	}
	if sweepFrames != 400 {
		t.Errorf("sweep frames default: got %d, want 400", sweepFrames)
	}

	tests := []struct {
		cmd  string
		want string
	}{
		{"run", "600"},
		{"sweep", "400"},
	}
	for _, tt := range tests {
		f := subcommand(t, root, tt.cmd).Flags().Lookup("frames")
		if f == nil || f.DefValue != tt.want {
			t.Errorf("%s --frames default: got %v, want %s", tt.cmd, f, tt.want)
		}
	}
}

func TestLoadConfigLayersFileOverPreset(t *testing.T) {
	root := newRootCmd()
	cmd := subcommand(t, root, "run")

	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("dice:\n  count: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	configFile = path
	t.Cleanup(func() { configFile = "" })

	cfg, err := loadConfig(cmd, "barrage")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Dice.Count != 3 {
		t.Errorf("file should set 3 dice, got %d", cfg.Dice.Count)
	}
	if cfg.Drop.X != -1 || cfg.Drop.ForceX != 1500 || cfg.Drop.FrameGap != 6 {
		t.Errorf("preset values lost: %+v", cfg.Drop)
	}
}

func TestLoadConfigDiceFlagWins(t *testing.T) {
	root := newRootCmd()
	cmd := subcommand(t, root, "run")
	if err := cmd.ParseFlags([]string{"--dice", "4", "--no-scatter"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { noScatter = false })

	cfg, err := loadConfig(cmd, "barrage")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Dice.Count != 4 || cfg.Scatter.Enabled {
		t.Errorf("flags not applied: dice %d scatter %v", cfg.Dice.Count, cfg.Scatter.Enabled)
	}
	if cfg.Drop.FrameGap != 6 {
		t.Errorf("preset gap lost: %d", cfg.Drop.FrameGap)
	}
}
