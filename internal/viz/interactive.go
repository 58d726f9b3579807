package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/globe"
)

var presetInfo = map[string]string{
	"default": "the standard globe",
	"dense":   "many fine dots",
	"sparse":  "few large dots",
	"calm":    "gentle, quick to settle",
	"storm":   "wide, strong, slow to settle",
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateSim
)

// picker lists presets and opens the live view on the chosen one.
type picker struct {
	state     int
	cursor    int
	presets   []string
	opts      []globe.Option
	err       error
	liveModel Model
}

func NewPicker(opts ...globe.Option) *picker {
	return &picker{
		state:   stateMenu,
		presets: config.ListPresets(),
		opts:    opts,
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m picker) start() (picker, tea.Cmd) {
	cfg := config.GetPreset(m.presets[m.cursor])
	g, err := globe.New(cfg, m.opts...)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel = NewModel(g)
	m.state = stateSim
	return m, m.liveModel.Init()
}

func (m picker) View() string {
	if m.state == stateSim {
		return m.liveModel.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("DOTGLOBE") + "\n    " + menuSub.Render("pick a preset") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-10s", name)), menuSub.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuDim.Render(fmt.Sprintf("  %-10s", name)), menuDim.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuDim.Render(" navigate  ") + menuKey.Render("enter") + menuDim.Render(" select  ") + menuKey.Render("q") + menuDim.Render(" quit") + "\n")
	return b.String()
}

// RunPicker shows the preset menu, then the live view.
func RunPicker(opts ...globe.Option) error {
	_, err := tea.NewProgram(NewPicker(opts...), tea.WithAltScreen()).Run()
	return err
}
