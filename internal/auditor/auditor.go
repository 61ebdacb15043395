// Package auditor wires the file selector, scanner and policy evaluator into one run.
package auditor

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/egressguard/internal/findings"
	"github.com/scan-io-git/egressguard/internal/policy"
	"github.com/scan-io-git/egressguard/internal/selector"
	"github.com/scan-io-git/egressguard/internal/syntax"
	"github.com/scan-io-git/egressguard/internal/whitelist"
	"github.com/scan-io-git/egressguard/pkg/shared"
	"github.com/scan-io-git/egressguard/pkg/shared/config"
	"github.com/scan-io-git/egressguard/pkg/shared/files"
)

// Auditor holds the immutable per-run state. Configuration is read once in New.
type Auditor struct {
	root      string
	jobs      int
	selector  *selector.Selector
	whitelist *whitelist.Resolver
	scanner   *syntax.Scanner
	evaluator *policy.Evaluator
	logger    hclog.Logger
}

type fileResult struct {
	violations []findings.Violation
	err        error
}

// New builds an Auditor for an absolute root directory.
func New(cfg *config.Config, root string, logger hclog.Logger) (*Auditor, error) {
	sel, err := selector.New(selector.Options{
		Root:             root,
		Include:          cfg.Audit.Include,
		IgnoreDirs:       cfg.Audit.IgnoreDirs,
		RespectGitignore: cfg.Audit.RespectGitignore,
	}, logger.Named("selector"))
	if err != nil {
		return nil, fmt.Errorf("failed to build file selector: %w", err)
	}

	evaluator, err := policy.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build policy: %w", err)
	}

	return &Auditor{
		root:      root,
		jobs:      config.GetJobs(cfg),
		selector:  sel,
		whitelist: whitelist.New(cfg.Audit.Whitelist),
		scanner: syntax.New(syntax.Options{
			FetchIdentifier:  cfg.Audit.FetchIdentifier,
			NetworkModule:    cfg.Audit.NetworkModule,
			AllowParseErrors: cfg.Audit.AllowParseErrors,
		}, logger.Named("scanner")),
		evaluator: evaluator,
		logger:    logger,
	}, nil
}

// Whitelist returns the effective whitelist resolver.
func (a *Auditor) Whitelist() *whitelist.Resolver {
	return a.whitelist
}

// Run audits every candidate file. The returned report lists violations in a
// deterministic order regardless of how many workers ran.
func (a *Auditor) Run(ctx context.Context) (*findings.Report, error) {
	candidates, err := a.selector.Select()
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	a.logger.Info("audit starting", "root", a.root, "files", len(candidates), "workers", a.jobs)

	results := make([]fileResult, len(candidates))
	shared.ForEveryWithBoundedGoroutines(a.jobs, candidates, func(i int, path string) {
		if err := ctx.Err(); err != nil {
			results[i] = fileResult{err: err}
			return
		}
		violations, err := a.auditPath(ctx, path)
		results[i] = fileResult{violations: violations, err: err}
	})

	report := &findings.Report{
		Root:       a.root,
		Files:      len(candidates),
		Whitelist:  a.whitelist.Entries(),
		Violations: []findings.Violation{},
	}
	for _, result := range results {
		if result.err != nil {
			return nil, result.err
		}
		report.Violations = append(report.Violations, result.violations...)
	}
	findings.Sort(report.Violations)

	a.logger.Info("audit finished", "files", report.Files, "violations", len(report.Violations))
	return report, nil
}

func (a *Auditor) auditPath(ctx context.Context, path string) ([]findings.Violation, error) {
	src, err := files.ReadSource(path)
	if err != nil {
		return nil, err
	}
	return a.AuditSource(ctx, path, src)
}

// AuditSource evaluates a single file. Every call site yields a pass or exactly one violation.
func (a *Auditor) AuditSource(ctx context.Context, path string, src []byte) ([]findings.Violation, error) {
	file, err := a.scanner.Scan(ctx, path, src)
	if err != nil {
		return nil, err
	}

	whitelisted := a.whitelist.IsWhitelisted(path)
	display := files.RelativeToRoot(a.root, path)
	a.logger.Debug("file scanned", "path", display, "whitelisted", whitelisted,
		"imports", len(file.Imports), "calls", len(file.Calls))

	var violations []findings.Violation
	for _, imp := range file.Imports {
		if v := a.evaluator.EvaluateImport(display, imp, whitelisted); v != nil {
			violations = append(violations, *v)
		}
	}
	for _, call := range file.Calls {
		if v := a.evaluator.EvaluateCall(display, call, whitelisted, src); v != nil {
			violations = append(violations, *v)
		}
	}
	return violations, nil
}
