package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/terralab/landscape-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect extraction run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List extraction runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tSITES\tOK\tSKIPPED\tSTARTED\tDURATION\tOUTPUT")
		for _, r := range runs {
			duration := "-"
			if r.FinishedAt != nil {
				duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
				r.ID, r.Status, r.SitesTotal, r.SitesSucceeded, r.SitesSkipped,
				r.StartedAt.Format(time.RFC3339), duration, r.OutputPath)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its skip records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "run %s\nstatus: %s\nsites: %d total, %d succeeded, %d skipped\noutput: %s\n",
			run.ID, run.Status, run.SitesTotal, run.SitesSucceeded, run.SitesSkipped, run.OutputPath)
		if run.Error != "" {
			fmt.Fprintf(os.Stdout, "error: %s\n", run.Error)
		}

		skips, err := st.ListSkips(ctx, run.ID)
		if err != nil {
			return err
		}
		if len(skips) == 0 {
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\nLANDSCAPE\tSCALE\tREASON")
		for _, s := range skips {
			scale := s.Scale
			if scale == "" {
				scale = "(site)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.LandscapeID, scale, s.Reason)
		}
		return w.Flush()
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "max runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
