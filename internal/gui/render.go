package gui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicesim/internal/viz"
)

func color(c lipgloss.Color) rl.Color {
	r, g, b := viz.RGB(c)
	return rl.NewColor(r, g, b, 255)
}

func vec(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Y()), float32(v.Z()))
}

func (a *App) Draw() {
	theme := viz.CurrentTheme
	rl.BeginDrawing()
	rl.ClearBackground(color(theme.Background))

	rl.BeginMode3D(a.Camera)
	if a.ShowGrid {
		a.drawFloor(color(theme.Floor))
	}
	a.drawDice(color(theme.Dice))
	rl.EndMode3D()

	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) drawFloor(col rl.Color) {
	t := a.View.Target
	grid := viz.NewWireframe()
	grid.AddGrid(mgl64.Vec3{t.X(), 0, t.Z()}, 2.5, 0.5)
	for _, e := range grid.Edges {
		rl.DrawLine3D(vec(e.Start), vec(e.End), col)
	}
}

// drawDice draws each die as its 12 edges, the same geometry the terminal
// viewport projects.
func (a *App) drawDice(col rl.Color) {
	for _, e := range viz.DiceWireframe(a.Scene.Dice()).Edges {
		rl.DrawLine3D(vec(e.Start), vec(e.End), col)
	}
}

func (a *App) DrawHUD() {
	theme := viz.CurrentTheme
	text, muted, accent := color(theme.Text), color(theme.Muted), color(theme.Accent)

	for i, line := range a.Scene.Params().HUD() {
		a.drawText(line, 20, 20+i*24, 18, text)
	}

	s := a.Scene
	a.drawText(fmt.Sprintf("%s  frame %d  dice %d/%d", s.Phase(), s.FrameCount(), s.Dropped(), s.Config().Dice.Count),
		20, 124, 16, muted)

	status := "RUNNING"
	if !a.Running {
		status = "PAUSED"
	}
	a.drawText(status, a.width-120, 20, 16, accent)

	a.DrawTelemetry(color(theme.Secondary), muted)

	a.drawText("[SPACE] PAUSE  [R] RESTART  [ARROWS] ORBIT  [G] GRID  [T] THEME  [Q] QUIT", 20, a.height-30, 14, muted)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), a.width-80, a.height-30, 14, muted)
}

func (a *App) drawText(text string, x, y, size int, col rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, col)
}

// DrawTelemetry plots the recent kinetic energy in the lower left corner.
func (a *App) DrawTelemetry(line, label rl.Color) {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 20, a.height-110
	width, height := 360, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + float32(i)/float32(len(a.Telemetry))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, line)
	a.drawText(fmt.Sprintf("E: %.1f J", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, label)
}
