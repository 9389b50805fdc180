// Package extract walks the buffer scales of each sampling site and turns
// windowed land-cover rasters into tagged metric records.
package extract

import (
	"context"
	"errors"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/terralab/landscape-cli/internal/buffer"
	"github.com/terralab/landscape-cli/internal/crs"
	"github.com/terralab/landscape-cli/internal/legend"
	"github.com/terralab/landscape-cli/internal/metrics"
	"github.com/terralab/landscape-cli/internal/model"
	"github.com/terralab/landscape-cli/internal/raster"
)

// Walker runs the per-site scale chain: window → project → reclassify →
// compute metrics, largest scale first.
type Walker struct {
	proj        *crs.Albers
	cellSize    float64
	legend      *legend.Legend
	metricNames []string
}

// NewWalker assembles a walker from its transform stages.
func NewWalker(proj *crs.Albers, cellSizeMeters float64, l *legend.Legend, metricNames []string) *Walker {
	return &Walker{proj: proj, cellSize: cellSizeMeters, legend: l, metricNames: metricNames}
}

// scaleNode is one step of the per-site chain. Its input raster is the
// windowed output of the nearest successful larger scale, which is what
// makes the reuse optimization a structural property rather than an
// accident of loop order.
type scaleNode struct {
	label string
	poly  *geom.Polygon
}

// WalkSite processes one site against its annual raster. At the largest
// scale the full annual raster is windowed; every smaller scale windows the
// previous successful scale's windowed raster instead, valid because the
// buffer polygons are strictly nested. Intermediate grids are dropped as
// soon as the next scale has been derived, so at most two consecutive
// scales' rasters are alive at once.
//
// A failure at the largest scale aborts the whole site (nothing downstream
// can be derived); failures at smaller scales skip only that scale.
func (w *Walker) WalkSite(ctx context.Context, set *buffer.Set, annual *raster.Grid) ([]model.MetricRecord, []model.Skip, error) {
	log := zap.L().With(zap.String("landscape", set.Site.LandscapeID))

	chain := make([]scaleNode, len(set.Scales))
	for i, sc := range set.Scales {
		chain[i] = scaleNode{label: sc.Label, poly: set.Polygons[sc.Label]}
	}

	var records []model.MetricRecord
	var skips []model.Skip

	parent := annual
	for i, node := range chain {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		windowed, err := raster.Window(parent, node.poly)
		if err != nil {
			var empty *raster.EmptyIntersectionError
			if errors.As(err, &empty) {
				if i == 0 {
					return nil, nil, err
				}
				log.Warn("scale outside windowed raster, skipping scale",
					zap.String("scale", node.label), zap.Error(err))
				skips = append(skips, model.Skip{
					LandscapeID: set.Site.LandscapeID,
					Scale:       node.label,
					Reason:      SkipReason(err),
				})
				continue
			}
			return nil, nil, err
		}
		// The unprojected window feeds the next-smaller scale regardless of
		// what happens to this scale downstream.
		parent = windowed

		scaleRecords, err := w.computeScale(windowed, set.Site.LandscapeID, node.label)
		if err != nil {
			if i == 0 {
				return nil, nil, err
			}
			log.Warn("scale metrics failed, skipping scale",
				zap.String("scale", node.label), zap.Error(err))
			skips = append(skips, model.Skip{
				LandscapeID: set.Site.LandscapeID,
				Scale:       node.label,
				Reason:      SkipReason(err),
			})
			continue
		}
		records = append(records, scaleRecords...)
	}

	return records, skips, nil
}

// computeScale projects, reclassifies, and measures one scale's windowed
// raster.
func (w *Walker) computeScale(windowed *raster.Grid, landscapeID, scale string) ([]model.MetricRecord, error) {
	projected, err := crs.Reproject(windowed, w.proj, w.cellSize)
	if err != nil {
		return nil, err
	}

	binary := w.legend.Reclassify(projected)

	values, err := metrics.Compute(binary, w.metricNames)
	if err != nil {
		return nil, err
	}

	records := make([]model.MetricRecord, len(values))
	for i, v := range values {
		records[i] = model.MetricRecord{
			LandscapeID: landscapeID,
			Scale:       scale,
			Class:       v.Class,
			Metric:      v.Metric,
			Value:       v.Value,
		}
	}
	return records, nil
}
