// Package harness runs the auditor as a subprocess against fixture scenarios and
// checks its exit codes.
package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/egressguard/pkg/shared/config"
)

const timedOutExitCode = -1

// Options configures how scenarios are launched.
type Options struct {
	// Command is the auditor binary followed by its leading arguments.
	Command []string
	// Env is added to every scenario environment after the inherited one.
	Env     []string
	Timeout time.Duration
}

// Result is the outcome of one scenario.
type Result struct {
	Scenario Scenario      `json:"scenario"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
	Error    string        `json:"error,omitempty"`
	Passed   bool          `json:"passed"`
}

// Summary aggregates a harness run.
type Summary struct {
	RunID   string   `json:"run_id"`
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
}

// OK reports whether every scenario matched its expected exit code.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Harness runs scenarios strictly one after another.
type Harness struct {
	opts   Options
	logger hclog.Logger
}

func New(opts Options, logger hclog.Logger) (*Harness, error) {
	if len(opts.Command) == 0 || opts.Command[0] == "" {
		return nil, fmt.Errorf("harness command is not set")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.Default().Harness.Timeout
	}
	return &Harness{opts: opts, logger: logger}, nil
}

// Run executes every scenario in table order, waiting for each subprocess to finish
// before starting the next.
func (h *Harness) Run(ctx context.Context, scenarios []Scenario) Summary {
	summary := Summary{RunID: uuid.NewString()}
	h.logger.Info("scenarios starting", "run_id", summary.RunID, "total", len(scenarios))

	for _, sc := range scenarios {
		result := h.runScenario(ctx, sc)
		if result.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}

	h.logger.Info("scenarios finished", "run_id", summary.RunID, "passed", summary.Passed, "failed", summary.Failed)
	return summary
}

func (h *Harness) runScenario(parent context.Context, sc Scenario) Result {
	ctx, cancel := context.WithTimeout(parent, h.opts.Timeout)
	defer cancel()

	args := append([]string{}, h.opts.Command[1:]...)
	if sc.Root != "" {
		args = append(args, "--root", sc.Root)
	}
	cmd := exec.CommandContext(ctx, h.opts.Command[0], args...)
	cmd.Env = scenarioEnv(os.Environ(), h.opts.Env, sc)
	cmd.WaitDelay = time.Second
	if sc.Root != "" {
		cmd.Dir = sc.Root
	}
	h.logger.Debug("scenario starting", "name", sc.Name, "cmd", cmd.Args, "root", sc.Root)

	var stdout, stderr bytes.Buffer
	debug := h.logger.StandardWriter(&hclog.StandardLoggerOptions{ForceLevel: hclog.Trace})
	cmd.Stdout = io.MultiWriter(&stdout, debug)
	cmd.Stderr = io.MultiWriter(&stderr, debug)

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Scenario: sc,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		result.ExitCode = timedOutExitCode
		result.Error = fmt.Sprintf("scenario timed out after %s", h.opts.Timeout)
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = timedOutExitCode
		result.Error = err.Error()
	}

	result.Passed = !result.TimedOut && result.Error == "" && result.ExitCode == sc.ExpectExit
	h.logger.Debug("scenario finished", "name", sc.Name, "exit_code", result.ExitCode, "passed", result.Passed)
	return result
}

// scenarioEnv builds an isolated environment: inherited overrides are dropped
// before the scenario's own values are injected.
func scenarioEnv(inherited, extra []string, sc Scenario) []string {
	isolated := map[string]bool{
		config.EnvGlobs:     true,
		config.EnvWhitelist: true,
		config.EnvRoot:      true,
		config.EnvConfig:    true,
	}
	env := make([]string, 0, len(inherited)+len(extra)+2)
	for _, kv := range inherited {
		key, _, _ := strings.Cut(kv, "=")
		if !isolated[key] {
			env = append(env, kv)
		}
	}
	env = append(env, extra...)
	env = append(env,
		config.EnvGlobs+"="+strings.Join(sc.Globs, ","),
		config.EnvWhitelist+"="+strings.Join(sc.Whitelist, ","),
	)
	return env
}

// WriteSummary prints one line per scenario and the captured output of every failure.
func WriteSummary(w io.Writer, s Summary) {
	for _, r := range s.Results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s  %s (expected exit %d, got %d, %s)\n",
			status, r.Scenario.Name, r.Scenario.ExpectExit, r.ExitCode, r.Duration.Round(time.Millisecond))
	}
	for _, r := range s.Results {
		if r.Passed {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", r.Scenario.Name)
		if r.Error != "" {
			fmt.Fprintf(w, "error: %s\n", r.Error)
		}
		fmt.Fprintf(w, "stdout:\n%s\nstderr:\n%s\n", r.Stdout, r.Stderr)
	}
	fmt.Fprintf(w, "\n%d passed, %d failed\n", s.Passed, s.Failed)
}
