package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"providerpulse/internal/dataprocessing"
	"providerpulse/internal/services"
	"providerpulse/internal/validation"
)

type parseOptions struct {
	threshold float64
	pretty    bool
	strategy  string
	result    bool
}

func (c *cli) parseCmd() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <workbook>",
		Short: "Print the provider-week records of one workbook as JSON",
		Long: `Parse one workbook and print its records as a JSON array on stdout.

With --result the whole parse result is printed instead: header row,
strategy, week segments, providers, records and coercion warnings.

The command fails when no records can be extracted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "minute threshold named in headers (default from config)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "pretty-print JSON output")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "auto", "column strategy: auto, keyword, positional, fixed_width")
	cmd.Flags().BoolVar(&opts.result, "result", false, "print the full parse result")
	return cmd
}

func (c *cli) runParse(cmd *cobra.Command, path string, opts parseOptions) error {
	cascade, err := cascadeFor(opts.strategy)
	if err != nil {
		return err
	}

	if err := validation.NewFileValidator(c.logger).ValidateWorkbook(path); err != nil {
		return err
	}

	threshold := opts.threshold
	if threshold <= 0 {
		threshold = c.cfg.Ingest.Threshold
	}

	parser := dataprocessing.NewParser(
		dataprocessing.WithLogger(c.logger),
		dataprocessing.WithThreshold(threshold),
		dataprocessing.WithCascade(cascade),
	)

	result, err := parser.ParseFile(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrInvalidWorkbook, err)
	}

	c.logger.InfoContext(cmd.Context(), "workbook parsed", "file", path, "result", result.String())

	if result.Empty() {
		return fmt.Errorf("%s: %w", path, services.ErrNoDataFound)
	}

	if opts.result {
		return c.writeJSON(result, opts.pretty)
	}
	return c.writeJSON(result.Records, opts.pretty)
}

// cascadeFor restricts the cascade to one named strategy. auto keeps the
// full keyword, positional, fixed width order.
func cascadeFor(name string) (*dataprocessing.Cascade, error) {
	switch name {
	case "", "auto":
		return dataprocessing.DefaultCascade(), nil
	case dataprocessing.StrategyKeyword:
		return dataprocessing.NewCascade(dataprocessing.KeywordStrategy{}), nil
	case dataprocessing.StrategyPositional:
		return dataprocessing.NewCascade(dataprocessing.PositionalStrategy{}), nil
	case dataprocessing.StrategyFixedWidth:
		return dataprocessing.NewCascade(dataprocessing.FixedWidthStrategy{}), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want auto, keyword, positional or fixed_width)", name)
	}
}
