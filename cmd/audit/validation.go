package audit

import (
	"fmt"

	"github.com/scan-io-git/egressguard/internal/report"
)

// validateAuditArgs validates the arguments provided to the audit command.
// A positional path is accepted as the audit root.
func validateAuditArgs(opts *RunOptionsAudit, args []string) error {
	if len(args) > 0 {
		if opts.Root != "" {
			return fmt.Errorf("you cannot use a 'root' flag and a target path at the same time")
		}
		opts.Root = args[0]
	}

	switch opts.Format {
	case report.FormatText:
		if opts.OutputPath != "" {
			return fmt.Errorf("the 'output' flag requires 'format' to be json or sarif")
		}
	case report.FormatJSON, report.FormatSARIF:
		if opts.OutputPath == "" {
			return fmt.Errorf("the 'output' flag must be specified for the %s format", opts.Format)
		}
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}

	if opts.Jobs < 0 {
		return fmt.Errorf("the 'jobs' flag must be a positive integer")
	}
	return nil
}
