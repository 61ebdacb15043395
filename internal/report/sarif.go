package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/egressguard/internal/findings"
	"github.com/scan-io-git/egressguard/pkg/shared/files"
)

const (
	toolName = "egressguard"
	toolURI  = "https://github.com/scan-io-git/egressguard"
)

var ruleDescriptions = map[string]string{
	findings.RuleForbiddenImport: "The network client module is imported outside the whitelisted files.",
	findings.RuleForbiddenCall:   "A raw network call is made outside the whitelisted files.",
	findings.RuleDynamicURL:      "A whitelisted network call uses a URL that cannot be resolved statically.",
	findings.RuleInvalidURL:      "A whitelisted network call uses a URL that is not absolute.",
	findings.RuleHostNotAllowed:  "A whitelisted network call targets a host outside the allowlist.",
}

// BuildSARIF converts the report into a SARIF 2.1.0 document.
func BuildSARIF(r *findings.Report, version string) (*sarif.Report, error) {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	if version != "" {
		run.Tool.Driver.Version = &version
	}

	if repo := r.Repository; repo != nil && repo.URI != "" {
		vcs := sarif.NewVersionControlDetails().WithRepositoryURI(repo.URI)
		if repo.Commit != "" {
			vcs.WithRevisionID(repo.Commit)
		}
		if repo.Branch != "" {
			vcs.WithBranch(repo.Branch)
		}
		run.AddVersionControlProvenance(vcs)
	}

	for _, v := range r.Violations {
		rule := run.AddRule(v.Rule).
			WithDescription(ruleDescriptions[v.Rule]).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: "error",
			})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(v.File)).
				WithRegion(sarif.NewRegion().WithStartLine(v.Line).WithStartColumn(v.Column)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(v.Message)).
			WithLevel("error").
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	reportSarif.AddRun(run)
	return reportSarif, nil
}

// WriteSARIF stores the report as a SARIF file.
func WriteSARIF(path string, r *findings.Report, version string) error {
	reportSarif, err := BuildSARIF(r, version)
	if err != nil {
		return err
	}
	if err := files.CreateFolderIfNotExists(filepath.Dir(path)); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()
	return reportSarif.PrettyWrite(file)
}

// Write stores the report in the requested structured format.
func Write(format, path string, r *findings.Report, version string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(path, r)
	case FormatSARIF:
		return WriteSARIF(path, r, version)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}
