package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terralab/landscape-cli/internal/config"
	"github.com/terralab/landscape-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, 10, "out/metrics.csv")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	skips := []model.Skip{
		{LandscapeID: "MG_P03", Reason: "missing_year_raster"},
		{LandscapeID: "MG_P07", Scale: "500m", Reason: "empty_intersection"},
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, 9, skips))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 10, got.SitesTotal)
	assert.Equal(t, 9, got.SitesSucceeded)
	// Only the whole-site skip counts against the site tally.
	assert.Equal(t, 1, got.SitesSkipped)
	assert.Equal(t, "out/metrics.csv", got.OutputPath)
	require.NotNil(t, got.FinishedAt)
	assert.False(t, got.FinishedAt.Before(got.StartedAt))

	gotSkips, err := s.ListSkips(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, gotSkips, 2)
	assert.Equal(t, "MG_P03", gotSkips[0].LandscapeID)
	assert.Empty(t, gotSkips[0].Scale)
	assert.Equal(t, "500m", gotSkips[1].Scale)
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, 3, "out/metrics.csv")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, "raster cache: no usable rasters"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "raster cache: no usable rasters", got.Error)
	assert.NotNil(t, got.FinishedAt)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "no-such-run")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.CreateRun(ctx, i+1, "out.csv")
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "runs.db"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.StoreConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unknown driver")
}
