package scenarios

import (
	"fmt"
	"time"

	"github.com/scan-io-git/egressguard/pkg/shared/files"
)

// validateScenariosArgs validates the scenarios flags and returns the parsed timeout,
// zero when the configuration default applies.
func validateScenariosArgs(opts *RunOptionsScenarios) (time.Duration, error) {
	if opts.File == "" {
		return 0, fmt.Errorf("the 'file' flag must be specified")
	}
	if err := files.ValidatePath(opts.File); err != nil {
		return 0, fmt.Errorf("the scenario table is not readable: %w", err)
	}

	binary, err := resolveBinary(opts.Binary)
	if err != nil {
		return 0, err
	}
	if err := files.ValidatePath(binary); err != nil {
		return 0, fmt.Errorf("the auditor binary is not usable: %w", err)
	}
	opts.Binary = binary

	if opts.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(opts.Timeout)
	if err != nil {
		return 0, fmt.Errorf("the 'timeout' flag is not a duration: %w", err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("the 'timeout' flag must be positive")
	}
	return timeout, nil
}
