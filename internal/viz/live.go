package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/sphgas/internal/metrics"
	"github.com/san-kum/sphgas/internal/sim"
)

const historyCapacity = 600

// Options configures the live viewer.
type Options struct {
	FPS           int
	StepsPerFrame int
	SampleEvery   int // frames between metric refreshes
	Width, Height int
	Theme         string
	Axes          bool
}

func DefaultOptions() Options {
	return Options{
		FPS:           30,
		StepsPerFrame: 1,
		SampleEvery:   10,
		Width:         80,
		Height:        24,
		Theme:         ThemeNebula.Name,
	}
}

type TickMsg time.Time

// Model steps a simulation on every tick and draws it through a Camera.
// Keys a/d, w/s and q/e rotate, z/x zoom.
type Model struct {
	sim       *sim.Simulation
	collector *metrics.Collector
	camera    *Camera
	home      Camera
	canvas    *Canvas
	opts      Options
	theme     int
	st        styles

	running  bool
	showHelp bool
	err      error

	fps     float64
	last    time.Time
	frame   int
	visible int
	energy  []float64
	radius  []float64
}

// NewModel builds a viewer around s. The camera is fitted to the
// configured cloud radius.
func NewModel(s *sim.Simulation, opts Options) Model {
	def := DefaultOptions()
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = def.StepsPerFrame
	}
	if opts.SampleEvery <= 0 {
		opts.SampleEvery = def.SampleEvery
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}

	consts := metrics.ConstantsFrom(s.Config())
	canvas := NewCanvas(opts.Width, opts.Height)
	cam := Fit(s.Config().Radius, canvas)
	theme := ThemeIndex(opts.Theme)
	m := Model{
		sim:       s,
		collector: metrics.NewCollector(metrics.Standard(consts)...),
		camera:    cam,
		home:      *cam,
		canvas:    canvas,
		opts:      opts,
		theme:     theme,
		st:        newStyles(Themes[theme]),
		running:   true,
		fps:       float64(opts.FPS),
		energy:    make([]float64, 0, historyCapacity),
		radius:    make([]float64, 0, historyCapacity),
	}
	m.sample()
	m.render()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		var in Input
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running && m.err == nil
		case "n":
			if !m.running {
				m.advance(1)
				m.sample()
			}
		case "c":
			*m.camera = m.home
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.st = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		case "a":
			in.Left = true
		case "d":
			in.Right = true
		case "w":
			in.Up = true
		case "s":
			in.Down = true
		case "q":
			in.Clockwise = true
		case "e":
			in.CounterCW = true
		case "z":
			in.ZoomIn = true
		case "x":
			in.ZoomOut = true
		}
		m.camera.TakeInput(m.fps, in)
		m.render()
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width-statsWidth-4, msg.Height-2)
		m.render()
		return m, nil

	case TickMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			if dt := now.Sub(m.last).Seconds(); dt > 0 {
				m.fps = 1 / (0.9/m.fps + 0.1*dt)
			}
		}
		m.last = now
		m.frame++
		if m.running {
			m.advance(m.opts.StepsPerFrame)
			if m.frame%m.opts.SampleEvery == 0 || !m.running {
				m.sample()
			}
		}
		m.render()
		return m, m.tick()
	}
	return m, nil
}

// advance runs up to n steps and stops the viewer on the first failure.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		if err := m.sim.Step(); err != nil {
			m.err = err
			m.running = false
			logrus.WithField("step", m.sim.StepIndex()).Errorf("live view stopped: %v", err)
			return
		}
	}
}

func (m *Model) sample() {
	m.collector.Observe(m.sim.Snapshot())
	vals := m.collector.Map()
	m.energy = appendCapped(m.energy, vals["total_energy"])
	m.radius = appendCapped(m.radius, vals["radius"])
}

func appendCapped(xs []float64, v float64) []float64 {
	if len(xs) == historyCapacity {
		xs = append(xs[:0], xs[1:]...)
	}
	return append(xs, v)
}

// resize keeps the vertical extent and square pixels.
func (m *Model) resize(w, h int) {
	if w < 10 || h < 5 {
		return
	}
	m.canvas = NewCanvas(w, h)
	aspect := float64(m.canvas.PixelWidth()) / float64(m.canvas.PixelHeight())
	m.camera.Width = m.camera.Height * aspect
	m.home.Width = m.home.Height * aspect
}

func (m *Model) render() {
	m.visible = m.camera.View(m.canvas, m.sim.Positions())
	if m.opts.Axes {
		m.camera.DrawAxes(m.canvas, m.sim.Config().Radius)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.failed.Render("TERMINATED")
	case m.running:
		return m.st.running.Render("RUNNING")
	default:
		return m.st.paused.Render("PAUSED")
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	var s strings.Builder
	s.WriteString(m.st.header.Render("SPH GAS CLOUD") + "\n")
	s.WriteString(m.status() + "\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(statsWidth-12), asciigraph.Caption("total energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}
	s.WriteString(m.st.label.Render("radius") + m.st.value.Render(Sparkline(m.radius, statsWidth-22)) + "\n\n")

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("step", fmt.Sprintf("%d", m.sim.StepIndex()))
	row("time", fmt.Sprintf("%.3e", m.sim.Time()))
	row("fps", fmt.Sprintf("%.1f", m.fps))
	row("visible", fmt.Sprintf("%d / %d", m.visible, m.sim.Len()))
	for _, v := range m.collector.Values() {
		row(v.Name, v.Formatted)
	}
	if m.err != nil {
		s.WriteString("\n" + m.st.failed.Render(wrap(m.err.Error(), statsWidth-4)) + "\n")
	}
	s.WriteString(m.st.help.Render("SPC pause  n step  c home  t theme  ? help  esc quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.st.canvas.Render(m.canvas.String()), m.st.stats.Render(s.String()))
	if m.showHelp {
		return m.st.help.Render(helpText) + "\n\n" + main
	}
	return main
}

const helpText = `a / d   rotate left / right
w / s   rotate up / down
q / e   roll clockwise / counter-clockwise
z / x   zoom in / out
c       reset camera
space   pause / resume
n       single step while paused
t       cycle theme
esc     quit`

func wrap(s string, width int) string {
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width] + "\n")
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

// Err is the step error that stopped the viewer, if any.
func (m Model) Err() error { return m.err }

// Run opens the viewer in the alternate screen and blocks until it quits.
func Run(s *sim.Simulation, opts Options) error {
	final, err := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.err
	}
	return nil
}
