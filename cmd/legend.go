package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/terralab/landscape-cli/internal/legend"
)

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Inspect the land-cover reclassification table",
}

var legendValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the legend file for internal consistency",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lgd, err := legend.Load(cfg.Legend.Path, cfg.Legend.DefaultTarget)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "legend OK: %d rules, default target %d\n",
			len(lgd.Rules()), cfg.Legend.DefaultTarget)
		return nil
	},
}

var legendShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the legend rules",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lgd, err := legend.Load(cfg.Legend.Path, cfg.Legend.DefaultTarget)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tTARGET\tNAME")
		for _, r := range lgd.Rules() {
			fmt.Fprintf(w, "%d\t%d\t%s\n", r.Source, r.Target, r.Name)
		}
		fmt.Fprintf(w, "*\t%d\t(default)\n", cfg.Legend.DefaultTarget)
		return w.Flush()
	},
}

func init() {
	legendCmd.AddCommand(legendValidateCmd)
	legendCmd.AddCommand(legendShowCmd)
	rootCmd.AddCommand(legendCmd)
}
