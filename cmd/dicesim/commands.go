package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dicesim/internal/automation"
	"github.com/san-kum/dicesim/internal/dice"
	"github.com/san-kum/dicesim/internal/export"
	"github.com/san-kum/dicesim/internal/metrics"
	"github.com/san-kum/dicesim/internal/storage"
	"github.com/san-kum/dicesim/internal/viz"
	"github.com/spf13/cobra"
)

func runHeadless(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var pacer *dice.Pacer
	if realtime {
		pacer = dice.NewPacer(cfg.World.FPS)
	}
	rec := &storage.Recorder{Stride: stride}
	ms := metrics.Defaults()
	observe := metrics.Observer(ms)

	fmt.Printf("dropping %d dice...\n", cfg.Dice.Count)
	start := time.Now()
	err = scene.Run(ctx, runFrames, pacer, func(frame int, d []dice.Die) {
		observe(frame, d)
		if save {
			rec.Observe(frame, d)
		} else {
			rec.Energy = append(rec.Energy, scene.KineticEnergy())
		}
	})
	if err != nil && !errors.Is(err, dice.ErrStopped) {
		return err
	}
	elapsed := time.Since(start)

	results := metrics.Results(ms)
	fmt.Printf("completed %d frames in %v\n", scene.FrameCount(), elapsed)
	fmt.Printf("phase: %s\n", scene.Phase())
	printMetrics(results)
	plotEnergy(rec.Energy)

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Preset:  preset,
		Dice:    cfg.Dice.Count,
		DieSize: cfg.Dice.Size,
		Frames:  scene.FrameCount(),
		Dt:      cfg.Dt(),
		Params:  scene.Params(),
		Metrics: results,
		Energy:  rec.Energy,
	}, rec.Poses)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printMetrics(results map[string]float64) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, results[name])
	}
}

func plotEnergy(energy []float64) {
	if len(energy) < 2 {
		return
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy (J) vs frame"),
	))
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := loadConfig(cmd, preset)
	if err != nil {
		return err
	}
	cfg, err := scenario.Config(base)
	if err != nil {
		return err
	}
	log, done, err := setupLogger(cfg, false)
	if err != nil {
		return err
	}
	defer done()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("  %s\n", scenario.Description)
	}
	results, err := automation.RunScenario(ctx, scenario, cfg, log, nil)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tKEYS\tFRAME\tPHASE\tDICE\tENERGY")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%q\t%d\t%s\t%d\t%.2f\n", r.Index+1, r.Keys, r.Frames, r.Phase, len(r.Dice), r.Energy)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil && !errors.Is(err, dice.ErrStopped) {
		return err
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, preset)
	if err != nil {
		return err
	}
	log, done, err := setupLogger(cfg, false)
	if err != nil {
		return err
	}
	defer done()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Param:    sweepParam,
		ParamMin: sweepMin,
		ParamMax: sweepMax,
		NumSteps: sweepSteps,
		Frames:   sweepFrames,
		Workers:  workers,
	}, cfg, log)
	if err != nil && !errors.Is(err, dice.ErrStopped) {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN_E\tMAX_E\tRESTING\tPEAK_Y\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%.2f\t%.2f\t%.0f\t%.3f\n",
			r.ParamValue,
			r.Metrics["mean_kinetic_energy"],
			r.Metrics["max_kinetic_energy"],
			r.Metrics["resting_dice"],
			r.Metrics["peak_height"],
		)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDICE\tFRAMES\tDT\tENERGY")
	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%s\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dice,
			run.Frames,
			run.Dt,
			viz.Sparkline(downsample(run.Energy, 24), 24),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	if asJSON {
		poses, err := st.LoadPoses(runID)
		if err != nil {
			return err
		}
		return storage.ExportJSON(os.Stdout, *meta, poses)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("dice: %d  frames: %d  dt: %.4fs\n", meta.Dice, meta.Frames, meta.Dt)
	for _, line := range meta.Params.HUD() {
		fmt.Printf("  %s\n", line)
	}
	printMetrics(meta.Metrics)
	plotEnergy(meta.Energy)
	return nil
}

// snapshotRun renders one recorded frame through the terminal camera and
// writes it, with the energy trace, as svg.
func snapshotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	cfg, err := loadConfig(cmd, preset)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	poses, err := st.LoadPoses(runID)
	if err != nil {
		return err
	}
	if len(poses) == 0 {
		return fmt.Errorf("run %s has no poses", runID)
	}

	frame := snapFrame
	if frame < 0 {
		frame = poses[len(poses)-1].Frame
	}
	selected := storage.FramePoses(poses, frame)
	if len(selected) == 0 {
		return fmt.Errorf("run %s has no poses at frame %d", runID, frame)
	}

	side := meta.DieSize
	if side <= 0 {
		side = cfg.Dice.Size
	}
	d := storage.PoseDice(selected, side)

	canvas := viz.NewCanvas(160, 60)
	cam := viz.NewCamera(cfg.View)
	cam.Resize(canvas.SubWidth(), canvas.SubHeight())
	wf := viz.DiceWireframe(d)
	wf.AddGrid(mgl64.Vec3{cam.Target.X(), 0, cam.Target.Z()}, 2.5, 0.5)
	viz.Render3D(canvas, wf, cam)

	out := snapOut
	if out == "" {
		out = runID + ".svg"
	}
	if err := export.SaveSVG(out, export.CanvasToSVG(canvas, 4, viz.CurrentTheme)); err != nil {
		return err
	}
	fmt.Printf("frame %d: %d dice -> %s\n", frame, len(d), out)

	if len(meta.Energy) > 1 {
		energyOut := strings.TrimSuffix(out, filepath.Ext(out)) + "_energy.svg"
		if err := export.SaveSVG(energyOut, export.SeriesToSVG(meta.Energy, 640, 200, viz.CurrentTheme)); err != nil {
			return err
		}
		fmt.Printf("energy -> %s\n", energyOut)
	}
	return nil
}

// downsample keeps n evenly spaced samples so a sparkline spans the whole run.
func downsample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*(len(values)-1)/(n-1)]
	}
	return out
}
