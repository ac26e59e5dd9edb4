package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sphgas/internal/experiment"
	"github.com/san-kum/sphgas/internal/sim"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func runSmall(t *testing.T) *experiment.Result {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Count = 40
	cfg.Neighbors = 8
	cfg.Seed = 3
	e, err := experiment.New(experiment.Config{Name: "small", Sim: cfg, Steps: 4, Every: 2}, experiment.NewRegistry())
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	res := runSmall(t)
	runID, err := st.Save(res, nil)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "small", meta.Name)
	assert.Equal(t, 40, meta.Count)
	assert.Equal(t, 4, meta.Steps)
	assert.Equal(t, res.Config, meta.Config)
	assert.Equal(t, res.Final, meta.Metrics)
	assert.Empty(t, meta.Error)

	stats, err := st.LoadStats(runID)
	require.NoError(t, err)
	assert.Equal(t, res.Names, stats.Names)
	assert.Equal(t, res.Steps, stats.Steps)
	assert.Equal(t, res.Times, stats.Times)
	assert.Equal(t, res.Series, stats.Series)

	snap, err := st.LoadParticles(runID)
	require.NoError(t, err)
	assert.Equal(t, res.Last.Positions, snap.Positions)
	assert.Equal(t, res.Last.Velocities, snap.Velocities)
	assert.Equal(t, res.Last.Thermal, snap.Thermal)
	assert.Equal(t, res.Last.Densities, snap.Densities)
	assert.Equal(t, 4, snap.Step)
}

func TestStoreRecordsFailure(t *testing.T) {
	st := New(t.TempDir())
	res := runSmall(t)
	res.Final["energy_drift"] = 0.5
	res.Final["bad"] = nan()

	runID, err := st.Save(res, errors.New("boom"))
	require.NoError(t, err)
	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "boom", meta.Error)
	assert.NotContains(t, meta.Metrics, "bad")
	assert.Equal(t, 0.5, meta.Metrics["energy_drift"])
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := New(filepath.Join(dir, "missing")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	res := runSmall(t)
	first, err := st.Save(res, nil)
	require.NoError(t, err)
	second, err := st.Save(res, nil)
	require.NoError(t, err)

	// Stray files and unreadable runs are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), nil, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreLoadErrors(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	_, err := st.Load("nope")
	assert.Error(t, err)
	_, err = st.LoadStats("nope")
	assert.Error(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bad"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad", statsFile), []byte("step,time,a\n0,0,x\n"), 0644))
	_, err = st.LoadStats("bad")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad", particlesFile), []byte("x,y\n1,2\n"), 0644))
	_, err = st.LoadParticles("bad")
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	res := runSmall(t)
	runID, err := st.Save(res, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, runID, true))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, runID, data.Metadata.ID)
	assert.Equal(t, res.Steps, data.Steps)
	assert.Len(t, data.Particles, 40)
	assert.Equal(t, res.Last.Positions[7], data.Particles[7].Position)

	buf.Reset()
	require.NoError(t, st.ExportJSON(&buf, runID, false))
	assert.NotContains(t, buf.String(), "particles")
}
