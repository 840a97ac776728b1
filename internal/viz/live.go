package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	maxStepsPerTick = 1024
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a simulator from the bubbletea event loop, advancing a batch
// of steps per tick and plotting the x/y projection of the particles.
type Model struct {
	sim     *sim.Simulator
	name    string
	dt      float64
	endTime float64

	canvas   *Canvas
	viewport Viewport

	stepsPerTick int
	running      bool
	done         bool
	showHelp     bool
	theme        int

	totals  sim.StepStats
	sample  metrics.Sample
	counts  []float64
	kinetic []float64
}

// NewModel wraps s for interactive stepping until endTime.
func NewModel(s *sim.Simulator, name string, dt, endTime float64, stepsPerTick int) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	lc := s.Index()
	m := Model{
		sim:          s,
		name:         name,
		dt:           dt,
		endTime:      endTime,
		canvas:       NewCanvas(width, height),
		viewport:     Viewport{Origin: lc.Origin(), Domain: lc.Domain()},
		stepsPerTick: stepsPerTick,
		running:      true,
		counts:       make([]float64, 0, historyCapacity),
		kinetic:      make([]float64, 0, historyCapacity),
	}
	m.record()
	return m
}

// SetTheme selects a theme by name.
func (m *Model) SetTheme(name string) { m.theme = ThemeByName(name) }

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			if m.stepsPerTick < maxStepsPerTick {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs one batch of steps, stopping at the end time.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick; i++ {
		if m.sim.Time()+0.5*m.dt > m.endTime {
			m.done = true
			break
		}
		m.totals.Merge(m.sim.Step(m.dt))
	}
	m.record()
}

func (m *Model) record() {
	lc := m.sim.Index()
	m.sample = metrics.Measure(lc, m.sim.Time(), lc.Dims())

	m.counts = append(m.counts, float64(m.sample.Count))
	if len(m.counts) > historyCapacity {
		m.counts = m.counts[1:]
	}
	m.kinetic = append(m.kinetic, m.sample.Kinetic)
	if len(m.kinetic) > historyCapacity {
		m.kinetic = m.kinetic[1:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.DrawFrame()
	m.canvas.DrawParticles(m.viewport, m.sim.Index())
}

func (m Model) status() string {
	switch {
	case m.done:
		return statusDone.Render("DONE")
	case !m.running:
		return statusPaused.Render("PAUSED")
	default:
		return statusRunning.Render("RUNNING")
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	theme := Themes[m.theme]
	m.draw()
	canvasView := theme.particles().Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(theme.header().Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n")
	s.WriteString(ProgressBar(m.sim.Time()/m.endTime, 30) + "\n\n")

	if len(m.counts) > 1 {
		chart := asciigraph.Plot(m.counts, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Particles"))
		s.WriteString(theme.graph().Render(chart) + "\n")
	}
	if len(m.kinetic) > 1 {
		chart := asciigraph.Plot(m.kinetic, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(theme.graph().Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.4f / %.2f", m.sim.Time(), m.endTime))
	row("Step", fmt.Sprintf("%d (x%d)", m.sim.Steps(), m.stepsPerTick))
	row("Particles", fmt.Sprintf("%d", m.sample.Count))
	row("Kinetic", fmt.Sprintf("%.4f", m.sample.Kinetic))
	row("Temp", fmt.Sprintf("%.4f", m.sample.Temperature))
	row("Removed", fmt.Sprintf("%d", m.totals.Boundary.Removed))
	row("Wrapped", fmt.Sprintf("%d", m.totals.Boundary.Wrapped))
	row("Pairs", fmt.Sprintf("%d", m.totals.Pairs.Evaluated))
	if m.totals.Pairs.Skipped > 0 {
		s.WriteString(theme.warning().Render(fmt.Sprintf("%d pairs below min separation", m.totals.Pairs.Skipped)) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause Q:Quit T:Theme\n+/-:Speed ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  +        - Double steps per frame   ║
║  -        - Halve steps per frame    ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
