package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/egressguard/internal/findings"
)

func sampleReport() *findings.Report {
	return &findings.Report{
		Root:      "/work/app",
		Files:     3,
		Whitelist: []string{"src/lib/net.ts", "scripts/sync.ts"},
		Violations: []findings.Violation{
			{Rule: findings.RuleForbiddenCall, File: "src/a.ts", Line: 1, Column: 1, Message: "fetch() forbidden outside whitelist"},
			{Rule: findings.RuleHostNotAllowed, File: "src/lib/net.ts", Line: 4, Column: 9, Message: `fetch(): host "api.example.com" not allowed; add // allow-external:api.example.com`},
			{Rule: findings.RuleForbiddenCall, File: "src/b.ts", Line: 2, Column: 3, Message: "axios() forbidden outside whitelist"},
		},
	}
}

func TestWriteTextSuccess(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, WriteText(&stdout, &stderr, &findings.Report{Files: 12}))

	assert.Equal(t, "egressguard: no network policy violations (12 files scanned)\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestWriteTextViolations(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, WriteText(&stdout, &stderr, sampleReport()))

	assert.Empty(t, stdout.String())
	assert.Equal(t, `src/a.ts:1:1  fetch() forbidden outside whitelist
src/lib/net.ts:4:9  fetch(): host "api.example.com" not allowed; add // allow-external:api.example.com
src/b.ts:2:3  axios() forbidden outside whitelist

egressguard: 3 network policy violation(s) in 3 files scanned
Whitelisted files:
  - src/lib/net.ts
  - scripts/sync.ts
`, stderr.String())
}

func TestWriteTextEmptyWhitelist(t *testing.T) {
	r := sampleReport()
	r.Whitelist = nil

	var stdout, stderr bytes.Buffer
	require.NoError(t, WriteText(&stdout, &stderr, r))
	assert.Contains(t, stderr.String(), "Whitelisted files:\n  (none)\n")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	require.NoError(t, Write(FormatJSON, path, sampleReport(), "1.0.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got findings.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *sampleReport(), got)
}

func TestBuildSARIF(t *testing.T) {
	doc, err := BuildSARIF(sampleReport(), "1.2.3")
	require.NoError(t, err)
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "egressguard", run.Tool.Driver.Name)
	require.NotNil(t, run.Tool.Driver.Version)
	assert.Equal(t, "1.2.3", *run.Tool.Driver.Version)

	var ruleIDs []string
	for _, rule := range run.Tool.Driver.Rules {
		ruleIDs = append(ruleIDs, rule.ID)
	}
	assert.Equal(t, []string{findings.RuleForbiddenCall, findings.RuleHostNotAllowed}, ruleIDs)

	require.Len(t, run.Results, 3)
	second := run.Results[1]
	assert.Equal(t, findings.RuleHostNotAllowed, *second.RuleID)
	require.Len(t, second.Locations, 1)
	loc := second.Locations[0].PhysicalLocation
	assert.Equal(t, "src/lib/net.ts", *loc.ArtifactLocation.URI)
	assert.Equal(t, 4, *loc.Region.StartLine)
	assert.Equal(t, 9, *loc.Region.StartColumn)
}

func TestBuildSARIFVersionControlProvenance(t *testing.T) {
	doc, err := BuildSARIF(sampleReport(), "1.2.3")
	require.NoError(t, err)
	assert.Empty(t, doc.Runs[0].VersionControlProvenance)

	r := sampleReport()
	r.Repository = &findings.Repository{
		URI:    "https://github.com/acme/payroll",
		Branch: "main",
		Commit: "0123456789abcdef0123456789abcdef01234567",
	}
	doc, err = BuildSARIF(r, "1.2.3")
	require.NoError(t, err)

	require.Len(t, doc.Runs[0].VersionControlProvenance, 1)
	vcs := doc.Runs[0].VersionControlProvenance[0]
	assert.Equal(t, "https://github.com/acme/payroll", *vcs.RepositoryURI)
	assert.Equal(t, "main", *vcs.Branch)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", *vcs.RevisionID)
}

func TestWriteSARIFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.sarif")
	require.NoError(t, Write(FormatSARIF, path, sampleReport(), ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "2.1.0"`)
	assert.Contains(t, string(data), findings.RuleForbiddenCall)
}

func TestWriteUnsupportedFormat(t *testing.T) {
	err := Write("xml", filepath.Join(t.TempDir(), "r.xml"), sampleReport(), "")
	assert.ErrorContains(t, err, `unsupported report format "xml"`)
}
