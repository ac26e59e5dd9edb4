package viz

import (
	"math"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/sim"
	"github.com/san-kum/sphgas/internal/vec"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	assert.Equal(t, 8, c.PixelWidth())
	assert.Equal(t, 8, c.PixelHeight())
	assert.Zero(t, c.Count())

	c.Set(0, 0)
	c.Set(7, 7)
	c.Set(7, 7)
	c.Set(-1, 3)
	c.Set(8, 0)
	assert.True(t, c.Lit(0, 0))
	assert.True(t, c.Lit(7, 7))
	assert.False(t, c.Lit(1, 0))
	assert.False(t, c.Lit(-1, 3))
	assert.Equal(t, 2, c.Count())

	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, '⠁', []rune(lines[0])[0])
	assert.Equal(t, '⢀', []rune(lines[1])[3])

	c.Clear()
	assert.Zero(t, c.Count())

	c.DrawLine(0, 0, 7, 0)
	assert.Equal(t, 8, c.Count())
}

func TestCamera_ProjectAndView(t *testing.T) {
	cv := NewCanvas(10, 5) // 20x20 pixels
	cam := NewCamera(vec.Zero(), 2, 2)

	x, y, ok := cam.Project(vec.Zero(), cv.PixelWidth(), cv.PixelHeight())
	require.True(t, ok)
	assert.Equal(t, 10, x)
	assert.Equal(t, 10, y)

	_, up, ok := cam.Project(vec.Vec3{Y: 0.5}, cv.PixelWidth(), cv.PixelHeight())
	require.True(t, ok)
	assert.Less(t, up, 10, "positive vertical is drawn above the centre")

	_, _, ok = cam.Project(vec.Vec3{X: 1}, cv.PixelWidth(), cv.PixelHeight())
	assert.False(t, ok)

	// Depth is ignored by an orthographic view.
	n := cam.View(cv, []vec.Vec3{{}, {Z: 100}, {X: 5}, {X: -0.9, Y: -0.9}})
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, cv.Count())

	// View clears what was drawn before.
	assert.Zero(t, cam.View(cv, nil))
	assert.Zero(t, cv.Count())
}

func TestFit_SquarePixels(t *testing.T) {
	cv := NewCanvas(80, 24)
	cam := Fit(3, cv)
	assert.InDelta(t, float64(cv.PixelWidth())/float64(cv.PixelHeight()), cam.Width/cam.Height, 1e-12)
	assert.InDelta(t, 12, math.Min(cam.Width, cam.Height), 1e-12)
}

func assertOrthonormal(t *testing.T, c *Camera) {
	t.Helper()
	assert.InDelta(t, 1, c.Horizontal.Norm(), 1e-12)
	assert.InDelta(t, 1, c.Vertical.Norm(), 1e-12)
	assert.InDelta(t, 0, c.Horizontal.Dot(c.Vertical), 1e-12)
}

func TestCamera_StaysOrthonormal(t *testing.T) {
	cam := NewCamera(vec.Zero(), 1, 1)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 5000; i++ {
		cam.TakeInput(7, Input{
			Left:      rng.Intn(2) == 0,
			Up:        rng.Intn(2) == 0,
			Clockwise: rng.Intn(2) == 0,
		})
		assertOrthonormal(t, cam)
	}
}

func TestCamera_FullTurn(t *testing.T) {
	const fps = 20
	cam := NewCamera(vec.Zero(), 1, 1)
	// A third of a revolution per second.
	for i := 0; i < 3*fps; i++ {
		cam.TakeInput(fps, Input{Right: true})
	}
	assert.InDelta(t, 0, cam.Horizontal.Sub(vec.UnitX()).Norm(), 1e-9)
	assert.InDelta(t, 0, cam.Vertical.Sub(vec.UnitY()).Norm(), 1e-9)

	for i := 0; i < fps*3/4; i++ {
		cam.TakeInput(fps, Input{Right: true})
	}
	// A quarter turn swings the depth axis from +Z to +X.
	assert.InDelta(t, 0, cam.Horizontal.Sub(vec.UnitZ().Neg()).Norm(), 1e-9)
	assert.InDelta(t, 0, cam.Depth().Sub(vec.UnitX()).Norm(), 1e-9)
}

func TestCamera_OpposingInputsCancel(t *testing.T) {
	cam := NewCamera(vec.Vec3{X: 1}, 2, 3)
	before := *cam
	cam.TakeInput(30, Input{Left: true, Right: true, Up: true, Down: true, Clockwise: true, CounterCW: true, ZoomIn: true, ZoomOut: true})
	assert.Equal(t, before, *cam)

	cam.TakeInput(30, Input{Left: true})
	cam.TakeInput(30, Input{Right: true})
	assert.InDelta(t, 0, cam.Horizontal.Sub(before.Horizontal).Norm(), 1e-12)
}

func TestCamera_Zoom(t *testing.T) {
	cam := NewCamera(vec.Zero(), 2, 4)
	cam.TakeInput(30, Input{ZoomIn: true})
	assert.InDelta(t, 2/ZoomFactor, cam.Width, 1e-12)
	assert.InDelta(t, 4/ZoomFactor, cam.Height, 1e-12)
	cam.TakeInput(30, Input{ZoomOut: true})
	cam.TakeInput(30, Input{ZoomOut: true})
	assert.InDelta(t, 2*ZoomFactor, cam.Width, 1e-12)
}

func TestCamera_DrawAxes(t *testing.T) {
	cv := NewCanvas(10, 5)
	cam := NewCamera(vec.Zero(), 2, 2)
	cam.DrawAxes(cv, 0.5)
	assert.True(t, cv.Lit(10, 10))
	assert.True(t, cv.Lit(14, 10), "x axis")
	assert.True(t, cv.Lit(10, 6), "y axis")

	cv.Clear()
	NewCamera(vec.Vec3{X: 10}, 2, 2).DrawAxes(cv, 0.5)
	assert.Zero(t, cv.Count())
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "───", Sparkline(nil, 3))
	assert.Equal(t, "▁█", Sparkline([]float64{0, 1}, 5))
	assert.Equal(t, "▁▁", Sparkline([]float64{2, 2}, 2))
	assert.Equal(t, 4, len([]rune(Sparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 4))))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"nebula", "retro", "minimal"}, ThemeNames())
	assert.Equal(t, 1, ThemeIndex("retro"))
	assert.Equal(t, 0, ThemeIndex("nope"))
}

func smallCloud(t *testing.T) *sim.Simulation {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Count = 32
	cfg.Radius = 1
	cfg.Speed = 0
	cfg.TotalMass = 1
	cfg.G = 1
	cfg.GasConstant = 1
	cfg.MolarMass = 1
	cfg.Temperature = 0.2
	cfg.Neighbors = 8
	cfg.Dt = 1e-3
	cfg.MinSeparation = 1e-6
	cfg.Workers = 1
	s, err := sim.New(cfg)
	require.NoError(t, err)
	return s
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_TickStepsSimulation(t *testing.T) {
	s := smallCloud(t)
	opts := DefaultOptions()
	opts.StepsPerFrame = 2
	opts.SampleEvery = 1
	m := NewModel(s, opts)
	require.NotNil(t, m.Init())
	assert.Len(t, m.energy, 1)
	assert.Equal(t, s.Len(), m.visible)

	now := time.Now()
	m, cmd := update(t, m, TickMsg(now))
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, s.StepIndex())
	assert.Len(t, m.energy, 2)

	m, _ = update(t, m, TickMsg(now.Add(time.Second/10)))
	assert.Equal(t, 4, s.StepIndex())
	assert.Less(t, m.fps, 30.0, "a slow frame lowers the estimate")

	assert.Contains(t, m.View(), "SPH GAS CLOUD")
	assert.Contains(t, m.View(), "RUNNING")
	assert.Contains(t, m.View(), "total_energy")
}

func TestModel_Keys(t *testing.T) {
	s := smallCloud(t)
	m := NewModel(s, DefaultOptions())

	m, _ = update(t, m, key(" "))
	assert.False(t, m.running)
	assert.Contains(t, m.View(), "PAUSED")
	m, _ = update(t, m, TickMsg(time.Now()))
	assert.Zero(t, s.StepIndex())

	m, _ = update(t, m, key("n"))
	assert.Equal(t, 1, s.StepIndex())

	width := m.camera.Width
	m, _ = update(t, m, key("z"))
	assert.InDelta(t, width/ZoomFactor, m.camera.Width, 1e-12)
	m, _ = update(t, m, key("d"))
	assert.NotEqual(t, vec.UnitX(), m.camera.Horizontal)
	m, _ = update(t, m, key("c"))
	assert.Equal(t, m.home, *m.camera)

	m, _ = update(t, m, key("t"))
	assert.Equal(t, 1, m.theme)
	m, _ = update(t, m, key("?"))
	assert.Contains(t, m.View(), "zoom in / out")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120-statsWidth-4, m.canvas.Width)
	assert.InDelta(t, float64(m.canvas.PixelWidth())/float64(m.canvas.PixelHeight()), m.camera.Width/m.camera.Height, 1e-12)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_StopsOnFailure(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.G = 1
	cfg.GasConstant = 1
	cfg.MolarMass = 1
	cfg.TotalMass = 1
	cfg.Radius = 1
	cfg.EnableGravity = false
	cfg.Neighbors = 1
	cfg.SmoothingFactor = 1
	cfg.KernelCutoff = 0
	cfg.XSPHWeight = 0
	cfg.Temperature = 1e-3
	cfg.Dt = 1
	cfg.MinSeparation = 1e-6
	s, err := sim.FromParticles(cfg, []vec.Vec3{{X: -0.5}, {X: 0.5}}, []vec.Vec3{{X: -1e3}, {X: 1e3}})
	require.NoError(t, err)

	m := NewModel(s, DefaultOptions())
	m, _ = update(t, m, TickMsg(time.Now()))
	assert.ErrorIs(t, m.Err(), dynamo.ErrNegativeEnergy)
	assert.False(t, m.running)
	assert.Contains(t, m.View(), "TERMINATED")

	m, _ = update(t, m, key(" "))
	assert.False(t, m.running, "a terminated run cannot resume")
}
