package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "*.asc", cfg.Raster.Pattern)
	assert.Equal(t, int32(-9999), cfg.Raster.NoData)
	assert.Equal(t, int32(0), cfg.Legend.DefaultTarget)
	assert.Equal(t, []float64{500, 1000, 2000, 4000, 8000}, cfg.Buffer.RadiiMeters)
	assert.Equal(t, 64, cfg.Buffer.Segments)
	assert.InDelta(t, -60, cfg.CRS.CentralMeridian, 0.001)
	assert.InDelta(t, 30, cfg.CRS.CellSizeMeters, 0.001)
	assert.Equal(t, []string{"pland", "patch_count", "edge_density"}, cfg.Metrics.Names)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentSites)
	assert.Equal(t, 300, cfg.Batch.SiteTimeoutSecs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/landscape
raster:
  dir: /data/mapbiomas
  pattern: "brasil_coverage_*.asc"
buffer:
  radii_meters: [500, 1000]
  segments: 32
batch:
  max_concurrent_sites: 8
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/landscape", cfg.Store.DatabaseURL)
	assert.Equal(t, "/data/mapbiomas", cfg.Raster.Dir)
	assert.Equal(t, "brasil_coverage_*.asc", cfg.Raster.Pattern)
	assert.Equal(t, []float64{500, 1000}, cfg.Buffer.RadiiMeters)
	assert.Equal(t, 32, cfg.Buffer.Segments)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentSites)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LANDSCAPE_STORE_DRIVER", "postgres")
	t.Setenv("LANDSCAPE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	assert.Error(t, err)
}
