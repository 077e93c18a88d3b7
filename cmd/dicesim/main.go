package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/san-kum/dicesim/internal/config"
	"github.com/san-kum/dicesim/internal/dice"
	"github.com/san-kum/dicesim/internal/gui"
	"github.com/san-kum/dicesim/internal/logger"
	"github.com/san-kum/dicesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	numDice    int
	noScatter  bool
	useMenu    bool
	logLevel   string
	logFormat  string
	logFile    string
	theme      string
	// run
	runFrames int
	realtime  bool
	save      bool
	stride    int
	// sweep
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepSteps  int
	sweepFrames int
	workers     int
	// show / snapshot
	asJSON    bool
	snapFrame int
	snapOut   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree and registers every flag.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dicesim",
		Short:         "drop, scatter and pull a stack of rigid dice",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTerminal,
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		viz.SetTheme(theme)
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".dicesim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.IntVar(&numDice, "dice", config.DefaultDice, "number of dice to drop")
	pf.BoolVar(&noScatter, "no-scatter", false, "only drop, never explode or pull")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (console, text, json)")
	pf.StringVar(&logFile, "log-file", "", "append logs to this file")
	pf.StringVar(&theme, "theme", "felt", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	rootCmd.Flags().BoolVar(&useMenu, "menu", false, "pick a preset before starting")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the scene in a desktop window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the scene headless and report metrics",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&runFrames, "frames", 600, "frames to simulate")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames at the configured rate")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")
	runCmd.Flags().IntVar(&stride, "stride", 1, "record poses every n frames")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "replay a yaml scenario of key presses",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one drop parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "spin", "parameter (x, y, z, force_x, force_y, force_z, spin, frame_gap)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 3, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepFrames, "frames", 400, "frames per value")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent scenes (default NumCPU)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "write metadata and poses as json")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render a stored frame to svg",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().IntVar(&snapFrame, "frame", -1, "frame to render (default last)")
	snapshotCmd.Flags().StringVar(&snapOut, "out", "", "output path (default <run_id>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, config.PresetInfo[name])
			}
		},
	}

	rootCmd.AddCommand(guiCmd, runCmd, scriptCmd, sweepCmd, listCmd, showCmd, snapshotCmd, presetsCmd)
	return rootCmd
}

// loadConfig layers defaults, the preset, the config file and flags, in that
// order.
func loadConfig(cmd *cobra.Command, name string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if name != "" {
		if cfg = config.GetPreset(name); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dice") {
		cfg.Dice.Count = numDice
	}
	if noScatter {
		cfg.Scatter.Enabled = false
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	return cfg, cfg.Validate()
}

// setupLogger installs the process logger. Full-screen views own the
// terminal, so they only log when a file is given.
func setupLogger(cfg *config.Config, fullscreen bool) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closer := func() {}
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out, closer = f, func() { f.Close() }
	case fullscreen:
		out = io.Discard
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out})
	return log, closer, nil
}

func runTerminal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, preset)
	if err != nil {
		return err
	}
	log, done, err := setupLogger(cfg, true)
	if err != nil {
		return err
	}
	defer done()

	if useMenu {
		return viz.RunMenu(func(name string) (*dice.Scene, error) {
			c, err := loadConfig(cmd, name)
			if err != nil {
				return nil, err
			}
			return dice.NewScene(c, log)
		}, log)
	}

	scene, err := dice.NewScene(cfg, log)
	if err != nil {
		return err
	}
	return viz.Run(scene, log)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, preset)
	if err != nil {
		return err
	}
	log, done, err := setupLogger(cfg, false)
	if err != nil {
		return err
	}
	defer done()

	scene, err := dice.NewScene(cfg, log)
	if err != nil {
		return err
	}
	return gui.Run(scene, log)
}
