package harness

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scan-io-git/egressguard/pkg/shared/config"
)

// Scenario is one black-box run of the auditor with isolated overrides.
type Scenario struct {
	Name       string   `yaml:"name" json:"name"`
	Globs      []string `yaml:"globs" json:"globs"`
	Whitelist  []string `yaml:"whitelist" json:"whitelist"`
	ExpectExit int      `yaml:"expect_exit" json:"expect_exit"`
	Root       string   `yaml:"root" json:"root,omitempty"`
}

// Table is the scenario file layout.
type Table struct {
	Root      string     `yaml:"root"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadTable reads a scenario table. Relative roots are resolved against the table's directory.
func LoadTable(path string) (*Table, error) {
	table := &Table{}
	if err := config.LoadYAML(path, table); err != nil {
		return nil, fmt.Errorf("failed to load scenarios %q: %w", path, err)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	table.Root = resolveRoot(base, table.Root)
	for i := range table.Scenarios {
		table.Scenarios[i].Root = resolveRoot(table.Root, table.Scenarios[i].Root)
	}

	if err := ValidateTable(table); err != nil {
		return nil, fmt.Errorf("invalid scenarios %q: %w", path, err)
	}
	return table, nil
}

// ValidateTable checks scenario names, globs and expected exit codes.
func ValidateTable(table *Table) error {
	if len(table.Scenarios) == 0 {
		return fmt.Errorf("no scenarios defined")
	}
	seen := make(map[string]bool, len(table.Scenarios))
	for i, sc := range table.Scenarios {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			return fmt.Errorf("scenario %d has no name", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate scenario name %q", name)
		}
		seen[name] = true
		if sc.ExpectExit < 0 || sc.ExpectExit > 255 {
			return fmt.Errorf("scenario %q: expect_exit must be between 0 and 255", name)
		}
		globs := 0
		for _, g := range sc.Globs {
			if strings.TrimSpace(g) != "" {
				globs++
			}
		}
		if globs == 0 {
			return fmt.Errorf("scenario %q: globs must not be empty", name)
		}
	}
	return nil
}

func resolveRoot(base, root string) string {
	if root == "" {
		return base
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(base, root)
}
