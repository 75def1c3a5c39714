package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"providerpulse/internal/weeks"
)

func (c *cli) weeksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weeks <label>...",
		Short: "Print week labels in chronological order",
		Long: `Canonicalize week labels and print them oldest first, one per line.
December weeks sort before January when a list spans the new year.
Labels without a month/day date are printed last.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labels := lo.Map(args, func(s string, _ int) string { return weeks.Canonicalize(s) })
			for _, l := range weeks.CanonicalOrder(labels) {
				fmt.Fprintln(c.stdout, l)
			}
			return nil
		},
	}
}
