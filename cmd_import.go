package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var importPreview int

var importCmd = &cobra.Command{
	Use:   "import [job]",
	Short: "Run a catalog import job, or list jobs without an argument",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, cancel, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer a.Close()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "JOB\tSOURCE\tMODE\tSCHEDULE\tWATCH")
			for _, j := range a.Catalog.ListJobs() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.Name, j.Source, j.Mode, j.Schedule, j.WatchPath)
			}
			return tw.Flush()
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if importPreview > 0 {
			products, err := a.Catalog.Preview(ctx, args[0], importPreview)
			if err != nil {
				return err
			}
			return enc.Encode(products)
		}
		res, err := a.Catalog.RunJob(ctx, args[0])
		if err != nil {
			return err
		}
		return enc.Encode(res)
	},
}

func init() {
	importCmd.Flags().IntVar(&importPreview, "preview", 0, "print up to N mapped products without writing them")
}
