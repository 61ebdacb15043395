package config

import (
	"os"
	"reflect"
	"strings"
)

// SetThen provides a utility to select the first value if set, otherwise defaults.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// SplitList splits a comma-separated value and drops empty items.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ApplyEnvOverrides applies the test isolation overrides from the environment.
// EGRESSGUARD_GLOBS replaces the include list, EGRESSGUARD_WHITELIST is appended to the whitelist.
func ApplyEnvOverrides(cfg *Config) {
	if globs := SplitList(os.Getenv(EnvGlobs)); len(globs) > 0 {
		cfg.Audit.Include = globs
	}
	if extra := SplitList(os.Getenv(EnvWhitelist)); len(extra) > 0 {
		cfg.Audit.Whitelist = append(append([]string{}, cfg.Audit.Whitelist...), extra...)
	}
	if root := os.Getenv(EnvRoot); root != "" {
		cfg.Audit.Root = root
	}
}
