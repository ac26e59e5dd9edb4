package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/sphgas/internal/sim"
	"github.com/san-kum/sphgas/internal/vec"
)

func twoBody() *sim.Snapshot {
	return &sim.Snapshot{
		Positions:  []vec.Vec3{{X: -1}, {X: 1}},
		Velocities: []vec.Vec3{{Y: 1}, {Y: -3}},
		Masses:     []float64{3, 1},
		Thermal:    []float64{2, 4},
		Densities:  []float64{1, 0.5},
		Smoothing:  []float64{1, 1},
		Divergence: []float64{-1, 0.5},
	}
}

var unit = Constants{G: 1, MolarMass: 1, GasConstant: 1}

func TestEnergies(t *testing.T) {
	s := twoBody()
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"kinetic", KineticEnergy(s), 0.5*3*1 + 0.5*1*9},
		{"thermal", ThermalEnergy(s), 6},
		{"potential", PotentialEnergy(s, unit), -3.0 / 2},
		{"total", TotalEnergy(s, unit), 6 + 6 - 1.5},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestMovement(t *testing.T) {
	s := twoBody()
	// 3·(0,1) + 1·(0,-3) = 0
	if got := Movement(s); got != 0 {
		t.Errorf("Movement() = %v, want 0", got)
	}
	s.Velocities[1] = vec.Vec3{Y: 1}
	if got := Movement(s); math.Abs(got-1) > 1e-12 {
		t.Errorf("Movement() = %v, want 1", got)
	}
}

func TestIdealisedRadius(t *testing.T) {
	s := twoBody()
	volume := 3/1.0 + 1/0.5
	want := math.Cbrt(volume * 3 / (4 * math.Pi))
	if got := IdealisedRadius(s); math.Abs(got-want) > 1e-12 {
		t.Errorf("IdealisedRadius() = %v, want %v", got, want)
	}
}

func TestAverages(t *testing.T) {
	s := twoBody()
	// T_i = E_i / (1.5 m_i): 2/4.5 and 4/1.5, mass-weighted.
	wantT := (3*(2/4.5) + 1*(4/1.5)) / 4
	if got := MeanTemperature(s, unit); math.Abs(got-wantT) > 1e-12 {
		t.Errorf("MeanTemperature() = %v, want %v", got, wantT)
	}
	// P_i = E_i ρ_i / (1.5 m_i)
	wantP := (2*1/4.5 + 4*0.5/1.5) / 2
	if got := MeanPressure(s, unit); math.Abs(got-wantP) > 1e-12 {
		t.Errorf("MeanPressure() = %v, want %v", got, wantP)
	}
	if got := MeanDivergence(s); math.Abs(got+0.25) > 1e-12 {
		t.Errorf("MeanDivergence() = %v, want -0.25", got)
	}
	if got := PeakDensity(s); got != 1 {
		t.Errorf("PeakDensity() = %v, want 1", got)
	}
	if got := SpeedDispersion(s); math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("SpeedDispersion() = %v, want √2", got)
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(unit)
	s := twoBody()
	m.Observe(s)
	if m.Value() != 0 {
		t.Errorf("drift after one sample = %v, want 0", m.Value())
	}

	e0 := m.Current()
	s.Thermal[0] += 0.1 * math.Abs(e0)
	m.Observe(s)
	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("drift = %v, want 0.1", m.Value())
	}

	// Max is kept when energy returns.
	s.Thermal[0] -= 0.1 * math.Abs(e0)
	m.Observe(s)
	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("drift after return = %v, want 0.1", m.Value())
	}

	m.Reset()
	if m.Value() != 0 || m.Current() != 0 {
		t.Error("Reset did not clear drift")
	}
}

func TestEscaped(t *testing.T) {
	m := NewEscaped(0.5)
	if m.Value() != 0 {
		t.Errorf("empty Value() = %v", m.Value())
	}
	s := twoBody()
	m.Observe(s)
	s.Positions[0] = vec.Vec3{}
	m.Observe(s)
	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("Value() = %v, want 0.75", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("Reset did not clear")
	}
}

func TestCollectorReportsOnlyChanges(t *testing.T) {
	c := NewCollector(NewGauge("kinetic", KineticEnergy), NewGauge("thermal", ThermalEnergy))
	s := twoBody()

	c.Observe(s)
	if got := c.Changed(); len(got) != 2 {
		t.Fatalf("first report has %d samples, want 2", len(got))
	}

	c.Observe(s)
	if got := c.Changed(); len(got) != 0 {
		t.Errorf("unchanged report = %v, want empty", got)
	}

	s.Thermal[1] = 40
	c.Observe(s)
	got := c.Changed()
	if len(got) != 1 || got[0].Name != "thermal" || got[0].Formatted != "4.20e+01" {
		t.Errorf("Changed() = %+v, want thermal 4.20e+01", got)
	}

	// Below the display precision nothing is reported.
	s.Thermal[1] += 1e-9
	c.Observe(s)
	if got := c.Changed(); len(got) != 0 {
		t.Errorf("sub-precision change reported: %v", got)
	}

	if m := c.Map(); m["thermal"] != ThermalEnergy(s) {
		t.Errorf("Map()[thermal] = %v", m["thermal"])
	}

	c.Reset()
	if got := c.Changed(); len(got) != 2 {
		t.Errorf("after Reset, report has %d samples, want 2", len(got))
	}
}

func TestStandardOnSimulation(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Count = 100
	cfg.Neighbors = 10
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollector(Standard(ConstantsFrom(cfg))...)
	c.Observe(s.Snapshot())

	values := c.Map()
	if math.Abs(values["temperature"]-cfg.Temperature) > 1e-9 {
		t.Errorf("temperature = %v, want %v", values["temperature"], cfg.Temperature)
	}
	if values["potential"] >= 0 {
		t.Errorf("potential = %v, want negative", values["potential"])
	}
	if r := values["radius"]; !(r > 0) || math.IsInf(r, 0) {
		t.Errorf("radius = %v", r)
	}
	for _, v := range c.Values() {
		if math.IsNaN(v.Value) {
			t.Errorf("%s is NaN", v.Name)
		}
	}
}
