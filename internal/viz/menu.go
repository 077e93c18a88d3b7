package viz

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dicesim/internal/config"
	"github.com/san-kum/dicesim/internal/dice"
)

// SceneBuilder makes a scene for the named preset.
type SceneBuilder func(preset string) (*dice.Scene, error)

// Menu lists the presets and hands over to a live Model once one is picked.
type Menu struct {
	presets []string
	cursor  int
	build   SceneBuilder
	log     *slog.Logger
	size    *tea.WindowSizeMsg
	live    *Model
	err     error
}

func NewMenu(build SceneBuilder, log *slog.Logger) Menu {
	return Menu{presets: config.ListPresets(), build: build, log: log}
}

func (m Menu) Init() tea.Cmd { return nil }

// Err is the error that ended the menu or the live view.
func (m Menu) Err() error {
	if m.live != nil && m.live.err != nil {
		return m.live.err
	}
	return m.err
}

// Selected is the preset picked, or "" while the menu is showing.
func (m Menu) Selected() string {
	if m.live == nil {
		return ""
	}
	return m.presets[m.cursor]
}

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = &msg
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			m.cursor = (m.cursor - 1 + len(m.presets)) % len(m.presets)
		case "down", "tab":
			m.cursor = (m.cursor + 1) % len(m.presets)
		case "enter", " ":
			scene, err := m.build(m.presets[m.cursor])
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			live := NewModel(scene, m.log)
			if m.size != nil {
				live.resize(m.size.Width, m.size.Height)
			}
			m.live = &live
			return m, live.Init()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}
	st := themeStyles(CurrentTheme)
	selected := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Accent)

	var s strings.Builder
	s.WriteString(st.header.Render(GradientText("DICE SIMULATION", CurrentTheme.Primary, CurrentTheme.Secondary)) + "\n")
	for i, name := range m.presets {
		line := "  " + st.label.Render(name) + st.hint.Render(config.PresetInfo[name])
		if i == m.cursor {
			line = selected.Render("> "+lipgloss.NewStyle().Width(10).Render(name)) + st.value.Render(config.PresetInfo[name])
		}
		s.WriteString(line + "\n")
	}
	s.WriteString("\n" + st.hint.Render("up/down select  enter start  q quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(s.String())
}

// RunMenu shows the preset menu and then the chosen scene.
func RunMenu(build SceneBuilder, log *slog.Logger) error {
	final, err := tea.NewProgram(NewMenu(build, log), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Menu); ok {
		return fm.Err()
	}
	return nil
}
