package legend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terralab/landscape-cli/internal/raster"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legend.yaml")
	content := `rules:
  - {source: 3, target: 1, name: forest formation}
  - {source: 4, target: 1, name: savanna formation}
  - {source: 15, target: 0, name: pasture}
  - {source: 24, target: 0, name: urban}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lgd, err := Load(path, 0)
	require.NoError(t, err)

	assert.Equal(t, int32(1), lgd.Target(3))
	assert.Equal(t, int32(1), lgd.Target(4))
	assert.Equal(t, int32(0), lgd.Target(15))

	rules := lgd.Rules()
	require.Len(t, rules, 4)
	assert.Equal(t, int32(3), rules[0].Source)
	assert.Equal(t, "forest formation", rules[0].Name)
}

// Totality: every code gets exactly 0 or 1; codes absent from the table
// take the default target.
func TestTargetDefaultsToZero(t *testing.T) {
	lgd, err := New([]Rule{{Source: 3, Target: 1}}, 0)
	require.NoError(t, err)

	for code := int32(-5); code <= 50; code++ {
		got := lgd.Target(code)
		assert.Contains(t, []int32{0, 1}, got)
		if code != 3 {
			assert.Equal(t, int32(0), got, "code %d should default to 0", code)
		}
	}
}

func TestConfigurableDefaultTarget(t *testing.T) {
	lgd, err := New([]Rule{{Source: 15, Target: 0}}, 1)
	require.NoError(t, err)

	assert.Equal(t, int32(0), lgd.Target(15))
	assert.Equal(t, int32(1), lgd.Target(999))
}

func TestConflictingDuplicateIsFatal(t *testing.T) {
	_, err := New([]Rule{
		{Source: 3, Target: 1},
		{Source: 3, Target: 0},
	}, 0)
	require.Error(t, err)
	var invalid *InvalidClassCodeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, int32(3), invalid.Code)
}

func TestConsistentDuplicateIsAllowed(t *testing.T) {
	_, err := New([]Rule{
		{Source: 3, Target: 1},
		{Source: 3, Target: 1},
	}, 0)
	assert.NoError(t, err)
}

func TestTargetOutsideBinaryDomainIsFatal(t *testing.T) {
	_, err := New([]Rule{{Source: 3, Target: 2}}, 0)
	require.Error(t, err)
	var invalid *InvalidClassCodeError
	assert.ErrorAs(t, err, &invalid)
}

func TestReclassify(t *testing.T) {
	lgd, err := New([]Rule{
		{Source: 3, Target: 1},
		{Source: 15, Target: 0},
	}, 0)
	require.NoError(t, err)

	g := raster.NewGrid(2, 2, raster.GeoTransform{CellWidth: 1, CellHeight: 1, OriginY: 2}, -9999)
	g.Set(0, 0, 3)
	g.Set(1, 0, 15)
	g.Set(0, 1, 42) // not in table
	// (1,1) stays nodata

	out := lgd.Reclassify(g)

	assert.Equal(t, int32(1), out.At(0, 0))
	assert.Equal(t, int32(0), out.At(1, 0))
	assert.Equal(t, int32(0), out.At(0, 1))
	assert.Equal(t, int32(-9999), out.At(1, 1))

	// Pure transform: input untouched.
	assert.Equal(t, int32(3), g.At(0, 0))
}

// A source raster whose nodata code is 0 must not swallow cells that
// reclassify to 0: the output nodata code moves out of the binary domain.
func TestReclassifyZeroNoDataSource(t *testing.T) {
	lgd, err := New([]Rule{
		{Source: 3, Target: 1, Name: "forest"},
		{Source: 21, Target: 0, Name: "pasture"},
	}, 0)
	require.NoError(t, err)

	g := raster.NewGrid(3, 1, raster.GeoTransform{CellWidth: 1, CellHeight: 1, OriginY: 1}, 0)
	g.Set(0, 0, 3)
	g.Set(1, 0, 21)
	// (2,0) stays nodata

	out := lgd.Reclassify(g)

	assert.NotContains(t, []int32{0, 1}, out.NoData)
	assert.Equal(t, int32(1), out.At(0, 0))
	assert.Equal(t, int32(0), out.At(1, 0))
	assert.True(t, out.Valid(0, 0))
	assert.True(t, out.Valid(1, 0))
	assert.False(t, out.Valid(2, 0))
	assert.Equal(t, 2, out.ValidCount())
}
