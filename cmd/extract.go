package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terralab/landscape-cli/internal/assemble"
	"github.com/terralab/landscape-cli/internal/buffer"
	"github.com/terralab/landscape-cli/internal/crs"
	"github.com/terralab/landscape-cli/internal/extract"
	"github.com/terralab/landscape-cli/internal/legend"
	"github.com/terralab/landscape-cli/internal/raster"
	"github.com/terralab/landscape-cli/internal/sites"
	"github.com/terralab/landscape-cli/internal/store"
)

var (
	extractSites       string
	extractOut         string
	extractLimit       int
	extractConcurrency int
	extractClasses     []int32
	extractDryRun      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the multi-scale metric extraction batch",
	Long: `Loads sampling sites, generates nested buffer polygons at every scale,
and computes landscape metrics per site and scale from the annual land-cover
raster matching each site's reference year.

Examples:
  # Full batch
  landscape-cli extract --sites sites.csv --out metrics.csv

  # Validate inputs without processing
  landscape-cli extract --sites sites.csv --dry-run

  # First 10 sites, forest class only
  landscape-cli extract --sites sites.csv --limit 10 --classes 1`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runExtract(ctx)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractSites, "sites", "", "sites file (.csv, .xlsx, or .shp)")
	extractCmd.Flags().StringVar(&extractOut, "out", "", "output CSV path (default from config)")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "max number of sites to process (0 = all)")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "concurrent sites (default from config)")
	extractCmd.Flags().Int32SliceVar(&extractClasses, "classes", []int32{1}, "focal classes to keep in the output")
	extractCmd.Flags().BoolVar(&extractDryRun, "dry-run", false, "load and validate inputs, then exit")
	_ = extractCmd.MarkFlagRequired("sites")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(ctx context.Context) error {
	outPath := extractOut
	if outPath == "" {
		outPath = cfg.Output.Path
	}
	concurrency := extractConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Batch.MaxConcurrentSites
	}

	// Legend inconsistencies are fatal before any site is touched.
	lgd, err := legend.Load(cfg.Legend.Path, cfg.Legend.DefaultTarget)
	if err != nil {
		return eris.Wrap(err, "extract: load legend")
	}

	siteList, err := sites.Load(extractSites)
	if err != nil {
		return err
	}
	if extractLimit > 0 && extractLimit < len(siteList) {
		siteList = siteList[:extractLimit]
	}
	zap.L().Info("loaded sites", zap.Int("sites", len(siteList)))

	sets, err := buffer.BuildAll(siteList, cfg.Buffer.RadiiMeters, cfg.Buffer.Segments)
	if err != nil {
		return eris.Wrap(err, "extract: build buffers")
	}

	proj, err := crs.NewAlbers(cfg.CRS)
	if err != nil {
		return eris.Wrap(err, "extract: projection")
	}

	// The raster cache is fully populated before worker dispatch; workers
	// read it without locking.
	cache, err := raster.LoadDir(cfg.Raster.Dir, cfg.Raster.Pattern, cfg.Raster.NoData)
	if err != nil {
		return err
	}

	if extractDryRun {
		fmt.Fprintf(os.Stdout, "sites: %d\nscales: %d\nraster years: %v\nlegend rules: %d\n",
			len(sets), len(cfg.Buffer.RadiiMeters), cache.Years(), len(lgd.Rules()))
		return nil
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return eris.Wrap(err, "extract: open store")
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, len(sets), outPath)
	if err != nil {
		return err
	}

	walker := extract.NewWalker(proj, cfg.CRS.CellSizeMeters, lgd, cfg.Metrics.Names)
	runner := extract.NewRunner(walker, cache, concurrency,
		time.Duration(cfg.Batch.SiteTimeoutSecs)*time.Second, extractClasses)

	records, summary, err := runner.Run(ctx, sets)
	if err != nil {
		if failErr := st.FailRun(context.WithoutCancel(ctx), run.ID, err.Error()); failErr != nil {
			zap.L().Warn("failed to record run failure", zap.Error(failErr))
		}
		return err
	}

	table := assemble.Pivot(records, scaleLabels(), cfg.Metrics.Names)
	if err := assemble.WriteCSVFile(outPath, table); err != nil {
		if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			zap.L().Warn("failed to record run failure", zap.Error(failErr))
		}
		return err
	}

	if err := st.CompleteRun(ctx, run.ID, summary.SitesSucceeded, summary.Skips); err != nil {
		zap.L().Warn("failed to record run completion", zap.Error(err))
	}

	logSkipSummary(summary)
	zap.L().Info("extraction complete",
		zap.String("run_id", run.ID),
		zap.String("output", outPath),
		zap.Int("rows", len(table.Rows)),
	)
	return nil
}

// scaleLabels returns output column scale prefixes in ascending radius
// order.
func scaleLabels() []string {
	scales := buffer.Scales(cfg.Buffer.RadiiMeters)
	labels := make([]string, len(scales))
	for i, sc := range scales {
		labels[len(scales)-1-i] = sc.Label
	}
	return labels
}

func logSkipSummary(summary *extract.Summary) {
	if len(summary.Skips) == 0 {
		return
	}
	byReason := make(map[string]int)
	for _, skip := range summary.Skips {
		byReason[skip.Reason]++
	}
	for reason, count := range byReason {
		zap.L().Warn("skip summary", zap.String("reason", reason), zap.Int("count", count))
	}
}
