package extract

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/terralab/landscape-cli/internal/buffer"
	"github.com/terralab/landscape-cli/internal/model"
	"github.com/terralab/landscape-cli/internal/raster"
)

// Runner fans site processing out over a bounded worker pool. Sites are
// independent: they share only the read-only raster cache, so no locking
// beyond result collection is needed.
type Runner struct {
	walker      *Walker
	cache       *raster.Cache
	concurrency int
	siteTimeout time.Duration
	// classes restricts output to focal classes; empty keeps every class.
	classes map[int32]bool
}

// NewRunner builds a batch runner. concurrency bounds in-flight sites (each
// holds at most two scales' grids); siteTimeout caps one site's walk, since
// reprojection cost is data-dependent.
func NewRunner(walker *Walker, cache *raster.Cache, concurrency int, siteTimeout time.Duration, classes []int32) *Runner {
	var focal map[int32]bool
	if len(classes) > 0 {
		focal = make(map[int32]bool, len(classes))
		for _, c := range classes {
			focal[c] = true
		}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		walker:      walker,
		cache:       cache,
		concurrency: concurrency,
		siteTimeout: siteTimeout,
		classes:     focal,
	}
}

// Summary reports the outcome of a batch run.
type Summary struct {
	SitesTotal     int
	SitesSucceeded int
	Skips          []model.Skip
}

// SkippedSites counts sites that produced no metrics at any scale.
func (s *Summary) SkippedSites() int {
	return s.SitesTotal - s.SitesSucceeded
}

// Run walks every site concurrently and collects metric records. Per-site
// failures are logged and recorded as skips; they never abort the batch.
// Completion order is arbitrary; downstream assembly joins on the landscape
// identifier, never on position.
func (r *Runner) Run(ctx context.Context, sets []*buffer.Set) ([]model.MetricRecord, *Summary, error) {
	if len(sets) == 0 {
		zap.L().Info("no sites to process")
		return nil, &Summary{}, nil
	}

	zap.L().Info("processing sites",
		zap.Int("sites", len(sets)),
		zap.Int("concurrency", r.concurrency),
		zap.Duration("site_timeout", r.siteTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	var mu sync.Mutex
	var records []model.MetricRecord
	var skips []model.Skip
	var succeeded int

	for _, set := range sets {
		g.Go(func() error {
			siteRecords, siteSkips, err := r.walkOne(gctx, set)

			mu.Lock()
			defer mu.Unlock()
			skips = append(skips, siteSkips...)
			if err != nil {
				// Site-level failure: skip the site, keep the batch alive.
				// Only a cancelled batch context propagates.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zap.L().Error("site skipped",
					zap.String("landscape", set.Site.LandscapeID),
					zap.String("reason", SkipReason(err)),
					zap.Error(err),
				)
				skips = append(skips, model.Skip{
					LandscapeID: set.Site.LandscapeID,
					Reason:      SkipReason(err),
				})
				return nil
			}
			records = append(records, r.filterClasses(siteRecords)...)
			succeeded++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, eris.Wrap(err, "extract: batch run")
	}

	summary := &Summary{
		SitesTotal:     len(sets),
		SitesSucceeded: succeeded,
		Skips:          skips,
	}
	zap.L().Info("batch complete",
		zap.Int("sites", summary.SitesTotal),
		zap.Int("succeeded", summary.SitesSucceeded),
		zap.Int("skipped_sites", summary.SkippedSites()),
		zap.Int("skips", len(summary.Skips)),
	)
	return records, summary, nil
}

// walkOne resolves the site's annual raster and walks its scales under the
// per-site timeout.
func (r *Runner) walkOne(ctx context.Context, set *buffer.Set) ([]model.MetricRecord, []model.Skip, error) {
	if r.siteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.siteTimeout)
		defer cancel()
	}

	annual, err := r.cache.Get(set.Site.YearMedian)
	if err != nil {
		return nil, nil, err
	}
	return r.walker.WalkSite(ctx, set, annual)
}

func (r *Runner) filterClasses(records []model.MetricRecord) []model.MetricRecord {
	if r.classes == nil {
		return records
	}
	out := records[:0]
	for _, rec := range records {
		if r.classes[rec.Class] {
			out = append(out, rec)
		}
	}
	return out
}
