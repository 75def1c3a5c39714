// Package main implements pulse, the command line front end of the
// weekly provider report parser.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"providerpulse/internal/config"
	"providerpulse/internal/infrastructure"
	"providerpulse/pkg/contracts"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand
type cli struct {
	configPath string
	logLevel   string

	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "pulse",
		Short: "Parse weekly provider performance workbooks",
		Long: `pulse reads weekly provider performance exports (.xlsx, .xlsm) and
turns the week-by-week column grid into one record per provider per week.

Examples:
  # Print the records of a workbook as JSON
  pulse parse report.xlsx --pretty

  # Parse every workbook in a directory
  pulse batch ./exports --concurrency 8

  # Put week labels in chronological order
  pulse weeks "Week of 1/6" "12/30"`,
		Version:           fmt.Sprintf("%s (%s)", contracts.Version, contracts.GitCommit),
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: PULSE_CONFIG_FILE or ./config.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(c.parseCmd(), c.batchCmd(), c.weeksCmd())
	return root
}

// setup loads configuration and builds a logger that writes to stderr so
// stdout stays machine readable
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	cfg.Logging.Level = c.logLevel
	c.cfg = cfg
	c.logger = infrastructure.WithComponent(infrastructure.NewLogger(cfg.Logging, c.stderr), "cli")
	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	return nil
}

func (c *cli) writeJSON(v interface{}, pretty bool) error {
	enc := json.NewEncoder(c.stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
