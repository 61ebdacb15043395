package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scan-io-git/egressguard/cmd/version"
	"github.com/scan-io-git/egressguard/internal/auditor"
	"github.com/scan-io-git/egressguard/internal/findings"
	"github.com/scan-io-git/egressguard/internal/git"
	"github.com/scan-io-git/egressguard/internal/report"
	"github.com/scan-io-git/egressguard/internal/syntax"
	"github.com/scan-io-git/egressguard/internal/watch"
	"github.com/scan-io-git/egressguard/pkg/shared/config"
	errs "github.com/scan-io-git/egressguard/pkg/shared/errors"
	"github.com/scan-io-git/egressguard/pkg/shared/files"
	"github.com/scan-io-git/egressguard/pkg/shared/logger"
)

// RunOptionsAudit holds the arguments for the audit command.
type RunOptionsAudit struct {
	ConfigPath string
	Root       string
	Format     string
	OutputPath string
	Jobs       int
	Watch      bool
}

var exampleAuditUsage = `  # Audit the current repository with egressguard.yml or the built-in defaults
  egressguard audit

  # Audit a specific project root
  egressguard audit --root /path/to/project

  # Audit with an explicit configuration file and four workers
  egressguard audit --config /path/to/egressguard.yml -j 4

  # Additionally write a SARIF report
  egressguard audit --format sarif --output /path/to/results.sarif

  # Re-run the audit whenever a source file changes
  egressguard audit --watch`

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	opts := &RunOptionsAudit{}
	cmd := &cobra.Command{
		Use:                   "audit [--root/-r PATH] [--config/-c PATH] [--format/-f FORMAT --output/-o PATH] [-j JOBS] [--watch] [PATH]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Example:               exampleAuditUsage,
		Short:                 "Audit TypeScript sources for network calls outside the whitelist",
		Long: `Audits TypeScript and JavaScript sources for outbound network access.

Only whitelisted files may import the network module or call it or fetch().
Inside whitelisted files every URL must be a literal with an allowed host,
unless the line carries // allow-external:<host> or the file carries // allow-dynamic-url.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, opts, args)
		},
	}
	AddFlags(cmd.Flags(), opts)
	return cmd
}

// AddFlags binds the audit flags to opts.
func AddFlags(flags *pflag.FlagSet, opts *RunOptionsAudit) {
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the egressguard.yml configuration file.")
	flags.StringVarP(&opts.Root, "root", "r", "", "Audit root directory. Defaults to the enclosing git repository or the working directory.")
	flags.StringVarP(&opts.Format, "format", "f", report.FormatText, "Additional report format: json or sarif. Requires --output.")
	flags.StringVarP(&opts.OutputPath, "output", "o", "", "Path to the structured report file.")
	flags.IntVarP(&opts.Jobs, "jobs", "j", 0, "Number of files audited concurrently. Overrides audit.jobs.")
	flags.BoolVar(&opts.Watch, "watch", false, "Re-run the audit whenever a source file under the root changes.")
}

// Run executes one audit, or keeps auditing in watch mode, writing results to the command's outputs.
func Run(cmd *cobra.Command, opts *RunOptionsAudit, args []string) error {
	if err := validateAuditArgs(opts, args); err != nil {
		return errs.NewCommandError(fmt.Errorf("invalid audit arguments: %w", err), errs.ExitInternal)
	}

	cfg, root, err := prepareAudit(opts)
	if err != nil {
		return errs.NewCommandError(err, errs.ExitInternal)
	}

	log := logger.NewLogger(cfg, "core-audit", cmd.ErrOrStderr())
	log.Debug("audit configured", "root", root, "include", cfg.Audit.Include, "whitelist", cfg.Audit.Whitelist)
	var repo *findings.Repository
	if md, err := git.CollectRepositoryMetadata(root); err == nil {
		repo = md.Provenance()
		log.Debug("repository detected", "uri", repo.URI, "branch", repo.Branch, "commit", repo.Commit)
	} else {
		log.Debug("audit root is not inside a git repository", "root", root)
	}

	a, err := auditor.New(cfg, root, log)
	if err != nil {
		log.Error("failed to initialise auditor", "error", err)
		return errs.NewCommandError(err, errs.ExitInternal)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if opts.Watch {
		return runWatch(ctx, a, repo, cfg, root, opts, stdout, stderr, log)
	}
	return runOnce(ctx, a, repo, opts, stdout, stderr, log)
}

func runOnce(ctx context.Context, a *auditor.Auditor, repo *findings.Repository, opts *RunOptionsAudit, stdout, stderr io.Writer, log hclog.Logger) error {
	result, err := a.Run(ctx)
	if err != nil {
		log.Error("audit failed", "error", err)
		return errs.NewCommandError(fmt.Errorf("audit failed: %w", err), errs.ExitInternal)
	}
	result.Repository = repo

	if err := report.WriteText(stdout, stderr, result); err != nil {
		return errs.NewCommandError(fmt.Errorf("failed to write results: %w", err), errs.ExitInternal)
	}

	if opts.Format != report.FormatText {
		if err := report.Write(opts.Format, opts.OutputPath, result, version.CoreVersion); err != nil {
			log.Error("failed to write report", "format", opts.Format, "path", opts.OutputPath, "error", err)
			return errs.NewCommandError(err, errs.ExitInternal)
		}
		log.Info("report written", "format", opts.Format, "path", opts.OutputPath)
	}

	if len(result.Violations) > 0 {
		return &errs.ViolationsError{Count: len(result.Violations)}
	}
	return nil
}

func runWatch(ctx context.Context, a *auditor.Auditor, repo *findings.Repository, cfg *config.Config, root string, opts *RunOptionsAudit, stdout, stderr io.Writer, log hclog.Logger) error {
	trigger := func(ctx context.Context) {
		if err := runOnce(ctx, a, repo, opts, stdout, stderr, log); err != nil {
			log.Debug("audit pass finished", "result", err.Error())
		}
	}

	w, err := watch.New(watch.Options{
		Root:       root,
		IgnoreDirs: cfg.Audit.IgnoreDirs,
		Relevant:   syntax.SupportedExtension,
	}, log.Named("watch"))
	if err != nil {
		return errs.NewCommandError(err, errs.ExitInternal)
	}
	defer w.Close()

	trigger(ctx)
	fmt.Fprintf(stderr, "egressguard: watching %s for changes\n", root)
	return w.Run(ctx, trigger)
}

// prepareAudit loads and validates the configuration and resolves the absolute audit root.
func prepareAudit(opts *RunOptionsAudit) (*config.Config, string, error) {
	base, explicit, err := baseRoot(opts.Root)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadConfig(opts.ConfigPath, base)
	if err != nil {
		return nil, "", err
	}
	config.ApplyEnvOverrides(cfg)
	if opts.Jobs > 0 {
		cfg.Audit.Jobs = opts.Jobs
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, "", err
	}

	root := base
	if !explicit && cfg.Audit.Root != "" {
		root = cfg.Audit.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(base, root)
		}
	}
	root, err = files.AbsRoot(root)
	if err != nil {
		return nil, "", fmt.Errorf("invalid audit root: %w", err)
	}
	return cfg, root, nil
}

// baseRoot picks the root used to find the configuration file:
// the flag, then EGRESSGUARD_ROOT, then the enclosing git repository, then the working directory.
func baseRoot(flagRoot string) (string, bool, error) {
	if root := config.SetThen(flagRoot, os.Getenv(config.EnvRoot)); root != "" {
		expanded, err := files.ExpandPath(root)
		if err != nil {
			return "", false, err
		}
		return expanded, true, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("failed to get working directory: %w", err)
	}
	if repoRoot, err := git.FindRepositoryRoot(cwd); err == nil {
		return repoRoot, false, nil
	}
	return cwd, false, nil
}
