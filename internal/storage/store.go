package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sphgas/internal/experiment"
	"github.com/san-kum/sphgas/internal/sim"
	"github.com/san-kum/sphgas/internal/vec"
)

const (
	metadataFile  = "metadata.json"
	statsFile     = "stats.csv"
	particlesFile = "particles.csv"
)

var particleHeader = []string{"x", "y", "z", "vx", "vy", "vz", "mass", "thermal", "density", "smoothing"}

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Count      int                `json:"count"`
	Steps      int                `json:"steps"`
	SimTime    float64            `json:"sim_time"`
	WallTimeMS int64              `json:"wall_time_ms"`
	Config     sim.Config         `json:"config"`
	Metrics    map[string]float64 `json:"metrics"`
	Error      string             `json:"error,omitempty"`
}

// Stats is the sampled statistics history of a run.
type Stats struct {
	Names  []string
	Steps  []int
	Times  []float64
	Series map[string][]float64
}

// Save writes metadata, statistics history and the final particle state
// of res. runErr, if any, is recorded in the metadata.
func (s *Store) Save(res *experiment.Result, runErr error) (string, error) {
	name := res.Name
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  now,
		Seed:       res.Config.Seed,
		Count:      res.Config.Count,
		Steps:      res.StepsTaken,
		SimTime:    res.SimTime,
		WallTimeMS: res.WallTime.Milliseconds(),
		Config:     res.Config,
		Metrics:    finite(res.Final),
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStats(filepath.Join(runDir, statsFile), res); err != nil {
		return "", err
	}
	if res.Last != nil {
		if err := writeParticles(filepath.Join(runDir, particlesFile), res.Last); err != nil {
			return "", err
		}
	}
	return runID, nil
}

// finite drops values JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

func writeStats(path string, res *experiment.Result) error {
	rows := [][]string{append([]string{"step", "time"}, res.Names...)}
	for i := range res.Steps {
		row := []string{strconv.Itoa(res.Steps[i]), formatFloat(res.Times[i])}
		for _, name := range res.Names {
			row = append(row, formatFloat(res.Series[name][i]))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

func writeParticles(path string, snap *sim.Snapshot) error {
	rows := [][]string{particleHeader}
	for i, p := range snap.Positions {
		v := snap.Velocities[i]
		rows = append(rows, []string{
			formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z),
			formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z),
			formatFloat(snap.Masses[i]), formatFloat(snap.Thermal[i]),
			formatFloat(snap.Densities[i]), formatFloat(snap.Smoothing[i]),
		})
	}
	return writeCSV(path, rows)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseRow(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *Store) LoadStats(runID string) (*Stats, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, fmt.Errorf("storage: %s: missing stats header", runID)
	}

	st := &Stats{Names: records[0][2:], Series: make(map[string][]float64)}
	for line, record := range records[1:] {
		if len(record) != len(records[0]) {
			return nil, fmt.Errorf("storage: %s: stats line %d has %d fields, want %d", runID, line+2, len(record), len(records[0]))
		}
		vals, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: stats line %d: %w", runID, line+2, err)
		}
		st.Steps = append(st.Steps, int(vals[0]))
		st.Times = append(st.Times, vals[1])
		for i, name := range st.Names {
			st.Series[name] = append(st.Series[name], vals[i+2])
		}
	}
	return st, nil
}

// LoadParticles reads the final particle state. Divergence is not stored
// and comes back as zeros.
func (s *Store) LoadParticles(runID string) (*sim.Snapshot, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: %s: empty particle file", runID)
	}

	n := len(records) - 1
	snap := &sim.Snapshot{
		Positions:  make([]vec.Vec3, n),
		Velocities: make([]vec.Vec3, n),
		Masses:     make([]float64, n),
		Thermal:    make([]float64, n),
		Densities:  make([]float64, n),
		Smoothing:  make([]float64, n),
		Divergence: make([]float64, n),
	}
	for i, record := range records[1:] {
		if len(record) != len(particleHeader) {
			return nil, fmt.Errorf("storage: %s: particle %d has %d fields, want %d", runID, i, len(record), len(particleHeader))
		}
		v, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: particle %d: %w", runID, i, err)
		}
		snap.Positions[i] = vec.Vec3{X: v[0], Y: v[1], Z: v[2]}
		snap.Velocities[i] = vec.Vec3{X: v[3], Y: v[4], Z: v[5]}
		snap.Masses[i] = v[6]
		snap.Thermal[i] = v[7]
		snap.Densities[i] = v[8]
		snap.Smoothing[i] = v[9]
	}

	if meta, err := s.Load(runID); err == nil {
		snap.Step = meta.Steps
		snap.Time = meta.SimTime
	}
	return snap, nil
}
