package scenarios

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/egressguard/internal/harness"
	"github.com/scan-io-git/egressguard/pkg/shared"
	"github.com/scan-io-git/egressguard/pkg/shared/config"
	errs "github.com/scan-io-git/egressguard/pkg/shared/errors"
	"github.com/scan-io-git/egressguard/pkg/shared/files"
	"github.com/scan-io-git/egressguard/pkg/shared/logger"
)

// RunOptionsScenarios holds the arguments for the scenarios command.
type RunOptionsScenarios struct {
	ConfigPath string
	File       string
	Binary     string
	LogPath    string
	Timeout    string
}

var exampleScenariosUsage = `  # Run the shipped scenario table against this binary
  egressguard scenarios --file testdata/scenarios/scenarios.yml

  # Run against another build with a shorter per-scenario timeout
  egressguard scenarios --file scenarios.yml --binary ./bin/egressguard --timeout 10s

  # Keep a JSON log of every scenario result
  egressguard scenarios --file scenarios.yml --log /tmp/scenarios.json`

// NewScenariosCmd creates the scenarios command.
func NewScenariosCmd() *cobra.Command {
	opts := &RunOptionsScenarios{}
	cmd := &cobra.Command{
		Use:                   "scenarios --file/-i PATH [--binary PATH] [--timeout DURATION] [--log PATH]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Example:               exampleScenariosUsage,
		Short:                 "Run the auditor against a table of fixture scenarios and check exit codes",
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !shared.HasFlags(cmd.Flags()) {
				return cmd.Help()
			}
			return runScenariosCommand(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the egressguard.yml configuration file used for harness defaults.")
	cmd.Flags().StringVarP(&opts.File, "file", "i", "", "Path to the YAML scenario table.")
	cmd.Flags().StringVar(&opts.Binary, "binary", "", "Auditor binary to run. Defaults to the running executable.")
	cmd.Flags().StringVar(&opts.Timeout, "timeout", "", "Per-scenario timeout, e.g. 30s. Overrides harness.timeout.")
	cmd.Flags().StringVar(&opts.LogPath, "log", "", "Path to a JSON file receiving every scenario result.")
	return cmd
}

func runScenariosCommand(cmd *cobra.Command, opts *RunOptionsScenarios) error {
	timeout, err := validateScenariosArgs(opts)
	if err != nil {
		return errs.NewCommandError(fmt.Errorf("invalid scenarios arguments: %w", err), errs.ExitInternal)
	}

	cfg, err := config.LoadConfig(opts.ConfigPath, "")
	if err != nil {
		return errs.NewCommandError(err, errs.ExitInternal)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return errs.NewCommandError(err, errs.ExitInternal)
	}
	log := logger.NewLogger(cfg, "core-scenarios", cmd.ErrOrStderr())

	table, err := harness.LoadTable(opts.File)
	if err != nil {
		log.Error("failed to load scenario table", "path", opts.File, "error", err)
		return errs.NewCommandError(err, errs.ExitInternal)
	}

	h, err := harness.New(harness.Options{
		Command: []string{opts.Binary, "audit"},
		Timeout: config.SetThen(timeout, config.GetHarnessTimeout(cfg)),
	}, log)
	if err != nil {
		return errs.NewCommandError(err, errs.ExitInternal)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	summary := h.Run(ctx, table.Scenarios)
	harness.WriteSummary(cmd.OutOrStdout(), summary)

	if opts.LogPath != "" {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return errs.NewCommandError(fmt.Errorf("failed to encode scenario log: %w", err), errs.ExitInternal)
		}
		if err := files.WriteJsonFile(opts.LogPath, data); err != nil {
			log.Error("failed to write scenario log", "path", opts.LogPath, "error", err)
			return errs.NewCommandError(err, errs.ExitInternal)
		}
	}

	if !summary.OK() {
		return errs.NewCommandError(fmt.Errorf("%d of %d scenarios failed (run %s)", summary.Failed, len(summary.Results), summary.RunID), errs.ExitViolations)
	}
	log.Info("scenarios command completed successfully", "run_id", summary.RunID)
	return nil
}

func resolveBinary(binary string) (string, error) {
	if binary != "" {
		return binary, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate the running executable: %w", err)
	}
	return exe, nil
}
