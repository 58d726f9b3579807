package viz

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/globe"
	"github.com/san-kum/dotglobe/internal/metrics"
	"github.com/san-kum/dotglobe/internal/probe"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 120
	fps             = 30
	cursorStep      = 0.08
	orbitStep       = 0.1
)

type TickMsg time.Time

// Model drives a globe from the keyboard. The hover cursor is fixed in view
// space, so the globe turns beneath it while auto-rotating.
type Model struct {
	globe         *globe.Globe
	canvas        *Canvas
	camera        *Camera
	theme         Theme
	styles        styles
	rng           *rand.Rand
	running       bool
	hovering      bool
	cullBack      bool
	lat, lon      float64
	positions     []r3.Vec
	scratch       []float64
	summary       metrics.Summary
	engaged       int
	meanHistory   []float64
	status        string
	showHelp      bool
	width, height int
}

func NewModel(g *globe.Globe) Model {
	cfg := g.Config()
	return Model{
		globe:       g,
		canvas:      NewCanvas(width, height),
		camera:      NewCamera(),
		theme:       Themes[0],
		styles:      newStyles(Themes[0], cfg.Color),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		running:     true,
		hovering:    true,
		cullBack:    true,
		lon:         math.Pi / 2,
		positions:   make([]r3.Vec, 0, g.Len()),
		meanHistory: make([]float64, 0, historyCapacity),
		width:       width,
		height:      height,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKey(msg.String()) {
			return m, tea.Quit
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// handleKey applies one key press and reports whether to quit.
func (m *Model) handleKey(key string) bool {
	g := m.globe
	cfg := g.Config()
	r := config.Ranges

	switch key {
	case "q", "ctrl+c":
		return true
	case " ":
		m.running = !m.running
	case "?":
		m.showHelp = !m.showHelp
	case "up", "k":
		m.lat = math.Min(m.lat+cursorStep, math.Pi/2)
	case "down", "j":
		m.lat = math.Max(m.lat-cursorStep, -math.Pi/2)
	case "left", "h":
		m.lon += cursorStep
	case "right", "l":
		m.lon -= cursorStep
	case "enter":
		m.hovering = !m.hovering
	case "c":
		g.Clear()
		m.meanHistory = m.meanHistory[:0]
	case "s":
		m.report(g.SetScatterEnabled(!cfg.Scatter.Enabled))
	case "a":
		m.report(g.SetAutoRotate(!cfg.AutoRotate))
	case "b":
		m.cullBack = !m.cullBack
	case "+", "=":
		m.report(g.SetCount(int(r.Count.Nudge(float64(cfg.Count), 1))))
	case "-", "_":
		m.report(g.SetCount(int(r.Count.Nudge(float64(cfg.Count), -1))))
	case "]":
		m.report(g.SetScatterRadius(r.Radius.Nudge(cfg.Scatter.Radius, 1)))
	case "[":
		m.report(g.SetScatterRadius(r.Radius.Nudge(cfg.Scatter.Radius, -1)))
	case ".":
		m.report(g.SetScatterStrength(r.Strength.Nudge(cfg.Scatter.Strength, 1)))
	case ",":
		m.report(g.SetScatterStrength(r.Strength.Nudge(cfg.Scatter.Strength, -1)))
	case "}":
		m.report(g.SetDecay(r.Decay.Nudge(cfg.Decay, 1)))
	case "{":
		m.report(g.SetDecay(r.Decay.Nudge(cfg.Decay, -1)))
	case ">":
		m.report(g.SetRotateSpeed(r.RotateSpeed.Nudge(cfg.RotateSpeed, 1)))
	case "<":
		m.report(g.SetRotateSpeed(r.RotateSpeed.Nudge(cfg.RotateSpeed, -1)))
	case "D":
		m.report(g.SetDotSize(r.DotSize.Nudge(cfg.DotSize, 1)))
	case "d":
		m.report(g.SetDotSize(r.DotSize.Nudge(cfg.DotSize, -1)))
	case "r":
		m.report(g.SetColor(config.RandomColor(m.rng)))
	case "0":
		m.camera.Reset()
	case "x":
		m.camera.Orbit(0, orbitStep)
	case "X":
		m.camera.Orbit(0, -orbitStep)
	case "y":
		m.camera.Orbit(orbitStep, 0)
	case "Y":
		m.camera.Orbit(-orbitStep, 0)
	case "z":
		m.camera.ZoomIn()
	case "Z":
		m.camera.ZoomOut()
	case "t":
		m.theme = NextTheme(m.theme.Name)
	}
	m.styles = newStyles(m.theme, g.Config().Color)
	return false
}

func (m *Model) report(err error) {
	var verr *config.ValidationError
	switch {
	case err == nil:
		m.status = ""
	case errors.As(err, &verr):
		m.status = fmt.Sprintf("%s %s", verr.Field, verr.Reason)
	default:
		m.status = err.Error()
	}
}

// Hover returns the world-space point under the cursor, or nil when the
// cursor is lifted.
func (m *Model) Hover() *r3.Vec {
	if !m.hovering {
		return nil
	}
	p := m.camera.Unrotate(probe.FromLatLon(m.lat, m.lon))
	return &p
}

// step advances the globe one tick.
func (m *Model) step() {
	cfg := m.globe.Config()
	if cfg.AutoRotate {
		m.camera.Orbit(autoRotateRate(cfg.RotateSpeed)/fps, 0)
	}

	m.engaged = m.globe.Step(m.Hover())
	m.summary, m.scratch = metrics.Summarize(m.globe.Displacements(), m.scratch)

	m.meanHistory = append(m.meanHistory, m.summary.Mean)
	if len(m.meanHistory) > historyCapacity {
		m.meanHistory = m.meanHistory[1:]
	}
}

// autoRotateRate converts a rotate speed to radians per second. Speed 1 is
// one revolution a minute.
func autoRotateRate(speed float64) float64 {
	return speed * 2 * math.Pi / 60
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.positions = m.globe.Snapshot(m.positions)
	RenderDots(m.canvas, m.positions, m.camera, m.globe.Config().DotSize, m.cullBack)
	if hover := m.Hover(); hover != nil {
		DrawMarker(m.canvas, *hover, m.camera, 2)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	cfg := m.globe.Config()
	st := m.styles
	r := config.Ranges

	var s strings.Builder
	s.WriteString(GradientText("DOT GLOBE", string(m.theme.Primary), cfg.Color) + "\n\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")
	if len(m.meanHistory) > 1 {
		chart := asciigraph.Plot(m.meanHistory, asciigraph.Height(4), asciigraph.Width(30),
			asciigraph.Precision(4), asciigraph.Caption("mean displacement"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Particles", formatCount(m.globe.Len()))
	row("Generation", fmt.Sprint(m.globe.Generation()))
	row("Engaged", fmt.Sprint(m.engaged))
	row("Peak", fmt.Sprintf("%.4f", m.summary.Max))
	row("Scatter", onOff(cfg.Scatter.Enabled))
	row("Rotate", onOff(cfg.AutoRotate))
	row("Cursor", onOff(m.hovering))

	s.WriteString("\n")
	param := func(label string, v float64, rg config.Range, format string) {
		s.WriteString(st.label.Render(label) + ParamBar(v, rg, 10) + " " + st.value.Render(fmt.Sprintf(format, v)) + "\n")
	}
	param("Radius", cfg.Scatter.Radius, r.Radius, "%.2f")
	param("Strength", cfg.Scatter.Strength, r.Strength, "%.3f")
	param("Decay", cfg.Decay, r.Decay, "%.2f")
	param("Dot size", cfg.DotSize, r.DotSize, "%.3f")
	param("Speed", cfg.RotateSpeed, r.RotateSpeed, "%.1f")
	row("Color", st.active.Render(cfg.Color))

	if m.status != "" {
		s.WriteString(st.warning.Render("! "+m.status) + "\n")
	}
	s.WriteString(st.help.Render("─────────────────────\nspace:pause c:clear s:scatter\nr:colour t:theme ?:help q:quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  space        Pause/resume           ║
║  arrows/hjkl  Move cursor            ║
║  enter        Lift/lower cursor      ║
║  c            Clear scatter          ║
║  s            Toggle scatter         ║
║  a            Toggle auto-rotate     ║
║  - / +        Particle count         ║
║  [ / ]        Scatter radius         ║
║  , / .        Scatter strength       ║
║  { / }        Decay                  ║
║  d / D        Dot size               ║
║  < / >        Rotate speed           ║
║  r            Random colour          ║
║  x / X        Pitch camera           ║
║  y / Y        Yaw camera             ║
║  z / Z        Zoom in/out            ║
║  0            Reset camera           ║
║  b            Toggle far side        ║
║  t            Cycle themes           ║
║  ?            Toggle help            ║
║  q            Quit                   ║
╚══════════════════════════════════════╝`

// Run opens the live view on g until the user quits.
func Run(g *globe.Globe) error {
	_, err := tea.NewProgram(NewModel(g), tea.WithAltScreen()).Run()
	return err
}
