package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sphgas/internal/config"
)

func parsedCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestResolveConfig_PresetWithOverrides(t *testing.T) {
	cmd := parsedCommand(t, "--preset", "quick", "-n", "50", "--no-gas", "--dt", "0.01")
	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)

	want := config.GetPreset("quick")
	assert.Equal(t, "quick", cfg.Run.Name)
	assert.Equal(t, 50, cfg.Cloud.Count)
	assert.Equal(t, 0.01, cfg.Solver.Dt)
	assert.False(t, cfg.Physics.Gas)
	assert.Equal(t, want.Solver.Neighbors, cfg.Solver.Neighbors, "unset flags keep preset values")
	assert.Equal(t, want.Cloud.Radius, cfg.Cloud.Radius)
}

func TestResolveConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.yml")
	base := config.GetPreset("collapse")
	base.Cloud.Count = 64
	require.NoError(t, config.Save(path, base))

	cmd := parsedCommand(t, "--config", path, "--steps", "7")
	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "tiny", cfg.Run.Name)
	assert.Equal(t, 64, cfg.Cloud.Count)
	assert.Equal(t, 7, cfg.Run.Steps)
	assert.True(t, cfg.Physics.Gas)
}

func TestResolveConfig_UnknownPreset(t *testing.T) {
	_, err := resolveConfig(parsedCommand(t, "--preset", "nope"))
	assert.ErrorContains(t, err, "unknown preset")
}
