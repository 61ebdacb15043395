package config

import (
	"path/filepath"
	"time"
)

const (
	DefaultConfigFileName = "egressguard.yml"

	MatchExact  = "exact"
	MatchSuffix = "suffix"
	MatchRegex  = "regex"

	ScopeFile = "file"
	ScopeLine = "line"
)

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Logger: Logger{Level: ""},
		Audit: Audit{
			Root: "",
			Include: []string{
				"src/**/*.{ts,tsx}",
				"scripts/**/*.{ts,tsx}",
				"tools/**/*.{ts,tsx}",
			},
			IgnoreDirs: []string{"node_modules", "dist", "build", ".next", ".git", "coverage", "out"},
			Whitelist: []string{
				"src/integrations/supabase/client.ts",
			},
			NetworkModule:   "axios",
			FetchIdentifier: "fetch",
			Jobs:            1,
		},
		Policy: Policy{
			Hosts: []HostRule{
				{Match: MatchSuffix, Pattern: ".supabase.co"},
			},
			DynamicMarkerScope: ScopeFile,
		},
		Harness: Harness{
			Timeout: 30 * time.Second,
		},
	}
}

// DefaultConfigPath returns the implicit config location for an audit root.
func DefaultConfigPath(root string) string {
	return filepath.Join(root, DefaultConfigFileName)
}

// GetJobs returns the number of concurrent file workers.
func GetJobs(cfg *Config) int {
	if cfg == nil {
		return 1
	}
	return SetThen(cfg.Audit.Jobs, 1)
}

// GetHarnessTimeout returns the per-scenario timeout.
func GetHarnessTimeout(cfg *Config) time.Duration {
	if cfg == nil {
		return Default().Harness.Timeout
	}
	return SetThen(cfg.Harness.Timeout, Default().Harness.Timeout)
}

// GetDynamicMarkerScope returns where an allow-dynamic-url marker applies.
func GetDynamicMarkerScope(cfg *Config) string {
	if cfg == nil {
		return ScopeFile
	}
	return SetThen(cfg.Policy.DynamicMarkerScope, ScopeFile)
}
