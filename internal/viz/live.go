package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dicesim/internal/dice"
)

const (
	panelWidth      = 46
	historyCapacity = 600
	tickInterval    = 20 * time.Millisecond
	minCanvasWidth  = 20
	minCanvasHeight = 8
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the terminal viewport of a dice scene.
type Model struct {
	scene         *dice.Scene
	pacer         *dice.Pacer
	log           *slog.Logger
	canvas        *Canvas
	camera        *Camera
	width, height int
	running       bool
	showHelp      bool
	showGrid      bool
	energyHistory []float64
	err           error
}

func NewModel(scene *dice.Scene, log *slog.Logger) Model {
	if log == nil {
		log = slog.Default()
	}
	view := scene.Config().View
	m := Model{
		scene:         scene,
		pacer:         dice.NewPacer(scene.Config().World.FPS),
		log:           log,
		canvas:        NewCanvas(80, 24),
		camera:        NewCamera(view),
		width:         80 + panelWidth,
		height:        27,
		running:       true,
		showGrid:      true,
		energyHistory: make([]float64, 0, historyCapacity),
	}
	m.camera.Resize(m.canvas.SubWidth(), m.canvas.SubHeight())
	return m
}

// Err is the simulation error that stopped the model, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd { return tick() }

// Update routes keys to the dice key scheme unless the viewport claims them,
// and advances the scene on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "left":
			m.camera.Orbit(-0.1, 0)
		case "right":
			m.camera.Orbit(0.1, 0)
		case "up":
			m.camera.Orbit(0, 0.05)
		case "down":
			m.camera.Orbit(0, -0.05)
		case "+", "=":
			m.camera.Dolly(0.9)
		case "-", "_":
			m.camera.Dolly(1.1)
		case "T":
			NextTheme()
		case "G":
			m.showGrid = !m.showGrid
		case "?":
			m.showHelp = !m.showHelp
		default:
			switch m.scene.HandleKey(msg.String()) {
			case dice.ActionQuit:
				return m, tea.Quit
			case dice.ActionRestart:
				m.energyHistory = m.energyHistory[:0]
			}
		}
		m.draw()
	case TickMsg:
		if m.running {
			if err := m.step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() error {
	m.pacer.Wait()
	if err := m.scene.Frame(); err != nil {
		return err
	}
	m.energyHistory = append(m.energyHistory, m.scene.KineticEnergy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	m.pacer.Mark()
	return nil
}

// resize fits the canvas to the terminal and rebuilds the projection for
// the new aspect.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cw := max(minCanvasWidth, w-panelWidth-8)
	ch := max(minCanvasHeight, h-3)
	m.canvas.Resize(cw, ch)
	m.camera.Resize(m.canvas.SubWidth(), m.canvas.SubHeight())
	m.log.Debug("viewport resized", "cols", cw, "rows", ch, "aspect", m.camera.Aspect)
}

func (m *Model) draw() {
	m.canvas.Clear()
	wf := DiceWireframe(m.scene.Dice())
	if m.showGrid {
		t := m.camera.Target
		wf.AddGrid(mgl64.Vec3{t.X(), 0, t.Z()}, 2.5, 0.5)
	}
	Render3D(m.canvas, wf, m.camera)
}

func (m Model) View() string {
	st := themeStyles(CurrentTheme)
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(GradientText("DICE SIMULATION", CurrentTheme.Primary, CurrentTheme.Secondary)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(st.warn.Render("STOPPED: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(st.status.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.status.Render("PAUSED") + "\n\n")
	}

	for _, line := range m.scene.Params().HUD() {
		s.WriteString(st.value.Render(line) + "\n")
	}
	s.WriteString("\n")

	total := m.scene.Config().Dice.Count
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("phase", m.scene.Phase().String())
	row("frame", fmt.Sprintf("%d (%d)", m.scene.FrameCount(), m.scene.Counter()))
	row("dice", fmt.Sprintf("%d/%d %s", m.scene.Dropped(), total, ProgressBar(m.scene.Dropped(), total, 12)))
	row("energy", fmt.Sprintf("%.1f J", m.scene.KineticEnergy()))
	row("theme", CurrentTheme.Name)

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(5),
			asciigraph.Width(30),
			asciigraph.Caption("kinetic energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	} else {
		s.WriteString("\n" + Sparkline(nil, 30) + "\n")
	}

	if m.showHelp {
		s.WriteString("\n" + st.hint.Render(helpText))
	} else {
		s.WriteString("\n" + st.hint.Render("? help  r restart  q quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
}

const helpText = `a/z s/x d/c  drop origin
f/v g/b h/n  throw force
j/m          spin
k/,          dice gap
r            restart
space        pause
arrows       orbit camera
+/-          zoom
G            floor grid
T            theme
q            quit`

// Run shows the scene in the terminal until the user quits.
func Run(scene *dice.Scene, log *slog.Logger) error {
	p := tea.NewProgram(NewModel(scene, log), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
