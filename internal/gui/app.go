package gui

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/dicesim/internal/dice"
	"github.com/san-kum/dicesim/internal/viz"
)

const (
	title        = "Dice Simulation"
	maxTelemetry = 300
	orbitSpeed   = 1.5 // radians per second
)

type App struct {
	Scene     *dice.Scene
	Camera    rl.Camera3D
	View      *viz.Camera // eye and target only; raylib owns the projection
	Running   bool
	ShowGrid  bool
	Telemetry []float64
	Font      rl.Font
	Log       *slog.Logger

	width, height int
	err           error
}

// initWindow opens a resizable window at the configured size and pins the
// frame rate to the scene's.
func initWindow(w, h, fps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w), int32(h), title)
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// loadFont prefers Liberation Mono and falls back to raylib's built-in font.
func loadFont() rl.Font {
	const path = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	if !rl.FileExists(path) {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(path, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(scene *dice.Scene, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	view := scene.Config().View
	a := &App{
		Scene:     scene,
		View:      viz.NewCamera(view),
		Running:   true,
		ShowGrid:  true,
		Telemetry: make([]float64, 0, maxTelemetry),
		Font:      loadFont(),
		Log:       log,
		width:     view.Width,
		height:    view.Height,
	}
	a.syncCamera()
	return a
}

// Run opens the window and blocks until it is closed or the user quits.
func Run(scene *dice.Scene, log *slog.Logger) error {
	view := scene.Config().View
	initWindow(view.Width, view.Height, scene.Config().World.FPS)
	defer rl.CloseWindow()
	return NewApp(scene, log).RunLoop()
}

// RunLoop is the per-frame routine: the frame budget is held by raylib's
// target FPS, input is applied, the scene advances and the frame is drawn.
func (a *App) RunLoop() error {
	for !rl.WindowShouldClose() {
		if quit := a.Update(); quit {
			return nil
		}
		if a.err != nil {
			return a.err
		}
		a.Draw()
	}
	return nil
}

func (a *App) syncCamera() {
	e, t := a.View.Eye, a.View.Target
	a.Camera = rl.NewCamera3D(
		rl.NewVector3(float32(e.X()), float32(e.Y()), float32(e.Z())),
		rl.NewVector3(float32(t.X()), float32(t.Y()), float32(t.Z())),
		rl.NewVector3(0, 1, 0),
		float32(a.View.FOV),
		rl.CameraPerspective,
	)
}

// Update handles resizing and input, then advances the scene. It reports
// whether the user asked to quit.
func (a *App) Update() bool {
	if rl.IsWindowResized() {
		a.resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
		if a.handleKey(string(rune(c))) {
			return true
		}
	}

	dt := float64(rl.GetFrameTime())
	yaw, pitch := 0.0, 0.0
	if rl.IsKeyDown(rl.KeyLeft) {
		yaw -= orbitSpeed * dt
	}
	if rl.IsKeyDown(rl.KeyRight) {
		yaw += orbitSpeed * dt
	}
	if rl.IsKeyDown(rl.KeyUp) {
		pitch += orbitSpeed * dt / 2
	}
	if rl.IsKeyDown(rl.KeyDown) {
		pitch -= orbitSpeed * dt / 2
	}
	if yaw != 0 || pitch != 0 {
		a.View.Orbit(yaw, pitch)
		a.syncCamera()
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.View.Dolly(1 - 0.1*float64(wheel))
		a.syncCamera()
	}

	if a.Running {
		if err := a.Scene.Frame(); err != nil {
			a.err = err
			return false
		}
		a.Telemetry = append(a.Telemetry, a.Scene.KineticEnergy())
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	return false
}

// resize records the window size for the HUD layout. raylib derives the
// projection from the framebuffer on every BeginMode3D, so the camera is
// left alone.
func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	a.Log.Debug("window resized", "width", w, "height", h)
}

// handleKey applies one typed character and reports whether to quit.
func (a *App) handleKey(key string) bool {
	switch key {
	case " ":
		a.Running = !a.Running
		return false
	case "G":
		a.ShowGrid = !a.ShowGrid
		return false
	case "T":
		viz.NextTheme()
		return false
	}
	switch a.Scene.HandleKey(key) {
	case dice.ActionQuit:
		return true
	case dice.ActionRestart:
		a.Telemetry = a.Telemetry[:0]
	}
	return false
}
