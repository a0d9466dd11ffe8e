// The bfcheck command runs a table of known-answer vectors against the
// blowfish package and exits non-zero if any of them fail. Without --vectors
// it checks the published table that is built into the binary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dcrodman/blowfish/internal/core"
	"github.com/dcrodman/blowfish/internal/vectors"
)

var ConfigFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:          "bfcheck",
		Short:        "Check the Blowfish implementation against known-answer vectors",
		SilenceUsage: true,
		RunE:         checkCommand,
	}
	rootCmd.Flags().StringVarP(&ConfigFlag, "config", "c", "", "Path to the directory containing config.yaml")
	rootCmd.Flags().String("vectors", "", "YAML vector table to check instead of the published table")
	rootCmd.Flags().Int("workers", 4, "Number of vectors to check concurrently")
	rootCmd.Flags().String("log-level", "info", "Minimum log level: debug, info, warn, error")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func checkCommand(cmd *cobra.Command, _ []string) error {
	config, err := core.LoadConfig(ConfigFlag, cmd.Flags())
	if err != nil {
		return err
	}
	log, err := core.NewLogger(config)
	if err != nil {
		return err
	}

	table := vectors.Published()
	if config.Vectors.File != "" {
		if table, err = vectors.Load(config.Vectors.File); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner := &vectors.Runner{
		Workers: config.Vectors.Workers,
		Cache:   vectors.NewCipherCache(config.Vectors.CacheTTL),
		Log:     log,
	}
	report, err := runner.Run(ctx, table)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d passed, %d failed\n", report.Table, len(report.Passed), len(report.Failed))
	if !report.OK() {
		return fmt.Errorf("%d of %d vectors failed", len(report.Failed), len(table.Vectors))
	}
	return nil
}
