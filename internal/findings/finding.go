package findings

import (
	"fmt"
	"sort"
)

// Rule identifiers attached to violations.
const (
	RuleForbiddenImport = "forbidden-import"
	RuleForbiddenCall   = "forbidden-call"
	RuleDynamicURL      = "dynamic-url"
	RuleInvalidURL      = "invalid-url"
	RuleHostNotAllowed  = "host-not-allowed"
)

// Violation is a single policy breach at a source position.
// Line and Column are 1-based.
type Violation struct {
	Rule    string `json:"rule"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// String renders the violation in the `path:line:col  message` form.
func (v Violation) String() string {
	return fmt.Sprintf("%s:%d:%d  %s", v.File, v.Line, v.Column, v.Message)
}

// Repository identifies the checkout an audit ran against.
type Repository struct {
	URI       string `json:"uri"`
	Subfolder string `json:"subfolder,omitempty"`
	Branch    string `json:"branch,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// Report is the externally visible result of one audit run.
type Report struct {
	Root       string      `json:"root"`
	Repository *Repository `json:"repository,omitempty"`
	Files      int         `json:"files_scanned"`
	Whitelist  []string    `json:"whitelist"`
	Violations []Violation `json:"violations"`
}

// Sort orders violations by file, position and message.
func Sort(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Message < b.Message
	})
}
