package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateAuditConfig(&cfg.Audit); err != nil {
		return fmt.Errorf("YAML global config: audit directive is invalid: %w", err)
	}
	if err := ValidatePolicyConfig(&cfg.Policy); err != nil {
		return fmt.Errorf("YAML global config: policy directive is invalid: %w", err)
	}
	if err := ValidateHarnessConfig(&cfg.Harness); err != nil {
		return fmt.Errorf("YAML global config: harness directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the log level and output format. Empty values fall back to the environment.
func ValidateLoggerConfig(l *Logger) error {
	switch strings.ToUpper(strings.TrimSpace(l.Level)) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "ERROR", "OFF":
	default:
		return fmt.Errorf("unknown level %q", l.Level)
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unknown format %q: expected %q or %q", l.Format, LogFormatText, LogFormatJSON)
	}
	return nil
}

// ValidateAuditConfig checks the file selection and whitelist settings.
func ValidateAuditConfig(audit *Audit) error {
	if audit == nil {
		return fmt.Errorf("audit configuration is nil")
	}
	if audit.Jobs < 0 || audit.Jobs > 64 {
		return fmt.Errorf("jobs must be between 1 and 64: %d", audit.Jobs)
	}
	if strings.TrimSpace(audit.NetworkModule) == "" {
		return fmt.Errorf("network_module must not be empty")
	}
	if strings.TrimSpace(audit.FetchIdentifier) == "" {
		return fmt.Errorf("fetch_identifier must not be empty")
	}
	for _, pattern := range audit.Include {
		if err := ValidateIncludePattern(pattern); err != nil {
			return err
		}
	}
	for _, dir := range audit.IgnoreDirs {
		if dir == "" || strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("ignore_dirs entry %q must be a single directory name", dir)
		}
	}
	return nil
}

// ValidateIncludePattern checks that an include glob, after an optional leading "!",
// is non-empty and relative to the audit root without leaving it.
func ValidateIncludePattern(pattern string) error {
	glob := strings.TrimPrefix(strings.TrimSpace(pattern), "!")
	if glob == "" {
		return fmt.Errorf("include pattern %q is empty", pattern)
	}
	slashed := filepath.ToSlash(glob)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(glob) || filepath.VolumeName(glob) != "" {
		return fmt.Errorf("include pattern %q must be relative to the audit root", pattern)
	}
	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return fmt.Errorf("include pattern %q must not leave the audit root", pattern)
		}
	}
	return nil
}

// ValidatePolicyConfig checks host rules and marker scope.
func ValidatePolicyConfig(policy *Policy) error {
	if policy == nil {
		return fmt.Errorf("policy configuration is nil")
	}
	for i, rule := range policy.Hosts {
		if err := validateHostRule(rule); err != nil {
			return fmt.Errorf("hosts[%d]: %w", i, err)
		}
	}
	switch policy.DynamicMarkerScope {
	case "", ScopeFile, ScopeLine:
	default:
		return fmt.Errorf("dynamic_marker_scope must be %q or %q, got %q", ScopeFile, ScopeLine, policy.DynamicMarkerScope)
	}
	return nil
}

// ValidateHarnessConfig checks the scenario harness settings.
func ValidateHarnessConfig(harness *Harness) error {
	if harness == nil {
		return fmt.Errorf("harness configuration is nil")
	}
	return validateDuration(harness.Timeout, "timeout", 10*time.Minute)
}

func validateHostRule(rule HostRule) error {
	if rule.Pattern == "" {
		return fmt.Errorf("pattern must not be empty")
	}
	switch rule.Match {
	case MatchExact, MatchSuffix:
	case MatchRegex:
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid regex %q: %w", rule.Pattern, err)
		}
	default:
		return fmt.Errorf("unknown match kind %q", rule.Match)
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}
