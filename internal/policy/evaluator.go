// Package policy turns scanned call sites into verdicts.
package policy

import (
	"fmt"

	"github.com/scan-io-git/egressguard/internal/findings"
	"github.com/scan-io-git/egressguard/internal/syntax"
	"github.com/scan-io-git/egressguard/pkg/shared/config"
)

// Evaluator applies the egress decision table to one call site at a time.
type Evaluator struct {
	hosts        *HostAllowList
	dynamicScope string
}

// New builds an Evaluator. dynamicScope is config.ScopeFile or config.ScopeLine.
func New(hosts *HostAllowList, dynamicScope string) *Evaluator {
	return &Evaluator{
		hosts:        hosts,
		dynamicScope: config.SetThen(dynamicScope, config.ScopeFile),
	}
}

// FromConfig builds an Evaluator from the policy section of the configuration.
func FromConfig(cfg *config.Config) (*Evaluator, error) {
	hosts, err := NewHostAllowList(cfg.Policy.Hosts)
	if err != nil {
		return nil, err
	}
	return New(hosts, config.GetDynamicMarkerScope(cfg)), nil
}

// Hosts returns the host allowlist the evaluator uses.
func (e *Evaluator) Hosts() *HostAllowList {
	return e.hosts
}

// EvaluateImport flags loads of the network module from non-whitelisted files.
func (e *Evaluator) EvaluateImport(path string, imp syntax.ModuleImport, whitelisted bool) *findings.Violation {
	if whitelisted {
		return nil
	}
	return newViolation(findings.RuleForbiddenImport, path, imp.Position,
		fmt.Sprintf("import of %q forbidden outside whitelist", imp.Specifier))
}

// EvaluateCall returns the violation for site, or nil when the call passes.
// The first matching row of the decision table wins.
func (e *Evaluator) EvaluateCall(path string, site syntax.CallSite, whitelisted bool, src []byte) *findings.Violation {
	label := site.Label()

	if !whitelisted {
		return newViolation(findings.RuleForbiddenCall, path, site.Position,
			fmt.Sprintf("%s forbidden outside whitelist", label))
	}

	if !site.Literal {
		if e.dynamicAllowed(site, src) {
			return nil
		}
		return newViolation(findings.RuleDynamicURL, path, site.Position,
			fmt.Sprintf("%s: dynamic URL forbidden; use a literal endpoint or annotate with // %s", label, MarkerAllowDynamic))
	}

	host, ok := ParseHost(site.URL)
	if !ok {
		return newViolation(findings.RuleInvalidURL, path, site.Position,
			fmt.Sprintf("%s: URL %q is not a valid absolute URL", label, site.URL))
	}

	if e.hosts.Allowed(host) {
		return nil
	}

	if HasAllowExternal(LineAt(src, site.Position.Offset), host) {
		return nil
	}

	return newViolation(findings.RuleHostNotAllowed, path, site.Position,
		fmt.Sprintf("%s: host %q not allowed; add // %s%s", label, host, MarkerAllowExternal, host))
}

// dynamicAllowed applies the allow-dynamic-url marker. With file scope a single
// marker anywhere in the file suppresses every dynamic-URL finding in it.
func (e *Evaluator) dynamicAllowed(site syntax.CallSite, src []byte) bool {
	if e.dynamicScope == config.ScopeLine {
		return HasAllowDynamic([]byte(LineAt(src, site.Position.Offset)))
	}
	return HasAllowDynamic(src)
}

func newViolation(rule, path string, pos syntax.Position, message string) *findings.Violation {
	return &findings.Violation{
		Rule:    rule,
		File:    path,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: message,
	}
}
