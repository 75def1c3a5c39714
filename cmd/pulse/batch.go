package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"providerpulse/internal/services"
)

type batchOptions struct {
	concurrency int
	pattern     string
	json        bool
}

func (c *cli) batchCmd() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Parse every workbook in a directory",
		Long: `Parse the workbooks in a directory concurrently and print one line per
file followed by a total. Excel lock files (~$name.xlsx) are skipped.

The command fails when any workbook could not be parsed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "workbooks parsed at once (default from config)")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", `glob on file names, e.g. "weekly_*"`)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	return cmd
}

// batchLine is the JSON form of one batch result
type batchLine struct {
	services.BatchResult
	Error string `json:"error,omitempty"`
}

func (c *cli) runBatch(cmd *cobra.Command, dir string, opts batchOptions) error {
	ingest := c.cfg.Ingest
	if opts.concurrency > 0 {
		ingest.BatchConcurrency = opts.concurrency
	}

	svc := services.NewDatasetService(ingest, nil, nil, c.logger)
	results, err := svc.IngestDirectory(cmd.Context(), dir, opts.pattern)
	if err != nil {
		return err
	}

	failed := lo.Filter(results, func(r services.BatchResult, _ int) bool { return r.Err != nil })

	if opts.json {
		lines := lo.Map(results, func(r services.BatchResult, _ int) batchLine {
			line := batchLine{BatchResult: r}
			if r.Err != nil {
				line.Error = r.Err.Error()
			}
			return line
		})
		if err := c.writeJSON(lines, true); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(c.stdout, "FAIL  %s  %v\n", r.File, r.Err)
				continue
			}
			fmt.Fprintf(c.stdout, "ok    %s  strategy=%s records=%d\n", r.File, r.Strategy, r.Records)
		}
		fmt.Fprintf(c.stdout, "%d files, %d bytes, %d records, %d failed\n",
			len(results),
			lo.SumBy(results, func(r services.BatchResult) int64 { return r.Size }),
			lo.SumBy(results, func(r services.BatchResult) int { return r.Records }),
			len(failed))
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d workbooks failed", len(failed), len(results))
	}
	return nil
}
