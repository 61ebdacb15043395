package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/egressguard/cmd/audit"
	"github.com/scan-io-git/egressguard/cmd/scenarios"
	"github.com/scan-io-git/egressguard/cmd/version"
	errs "github.com/scan-io-git/egressguard/pkg/shared/errors"
)

// NewRootCmd builds the command tree. Running the root command without a subcommand audits.
func NewRootCmd() *cobra.Command {
	opts := &audit.RunOptionsAudit{}
	rootCmd := &cobra.Command{
		Use:                   "egressguard [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "egressguard audits frontend sources for unsanctioned network egress.",
		Long: `egressguard is a static network-egress policy auditor for TypeScript and JavaScript projects.
	It restricts network calls to whitelisted files and, inside them, to literal URLs with allowed hosts.
	Without a subcommand it runs an audit.
	`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return audit.Run(cmd, opts, args)
		},
	}
	audit.AddFlags(rootCmd.Flags(), opts)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(audit.NewAuditCmd())
	rootCmd.AddCommand(scenarios.NewScenariosCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execute(ctx, NewRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, rootCmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return errs.ExitOK
	}

	var violations *errs.ViolationsError
	if !errors.As(err, &violations) {
		fmt.Fprintf(stderr, "egressguard: %v\n", err)
	}
	return errs.ExitCode(err)
}
