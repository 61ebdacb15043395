package policy

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/scan-io-git/egressguard/pkg/shared/config"
)

type hostRule struct {
	match   string
	pattern string
	re      *regexp.Regexp
}

// HostAllowList is an ordered set of host rules; a host is allowed when any rule matches.
type HostAllowList struct {
	rules []hostRule
}

// NewHostAllowList compiles the configured rules. Regex rules must match the whole host.
func NewHostAllowList(rules []config.HostRule) (*HostAllowList, error) {
	list := &HostAllowList{}
	for i, rule := range rules {
		compiled := hostRule{match: rule.Match, pattern: strings.ToLower(rule.Pattern)}
		switch rule.Match {
		case config.MatchExact, config.MatchSuffix:
		case config.MatchRegex:
			re, err := regexp.Compile("(?i)^(?:" + rule.Pattern + ")$")
			if err != nil {
				return nil, fmt.Errorf("host rule %d: invalid regex %q: %w", i, rule.Pattern, err)
			}
			compiled.re = re
		default:
			return nil, fmt.Errorf("host rule %d: unknown match kind %q", i, rule.Match)
		}
		list.rules = append(list.rules, compiled)
	}
	return list, nil
}

// Allowed reports whether host matches at least one rule.
func (l *HostAllowList) Allowed(host string) bool {
	host = strings.ToLower(host)
	for _, rule := range l.rules {
		switch rule.match {
		case config.MatchExact:
			if host == rule.pattern {
				return true
			}
		case config.MatchSuffix:
			if strings.HasSuffix(host, rule.pattern) {
				return true
			}
		case config.MatchRegex:
			if rule.re.MatchString(host) {
				return true
			}
		}
	}
	return false
}

// Describe lists the rules in a human-readable form.
func (l *HostAllowList) Describe() []string {
	out := make([]string, 0, len(l.rules))
	for _, rule := range l.rules {
		out = append(out, rule.match+":"+rule.pattern)
	}
	return out
}

// ParseHost extracts the lower-cased host of an absolute URL.
// Relative, scheme-less or host-less URLs are rejected.
func ParseHost(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}
