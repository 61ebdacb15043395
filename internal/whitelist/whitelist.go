// Package whitelist decides which files may perform raw network calls.
package whitelist

import (
	"path"
	"path/filepath"
	"strings"
)

// Resolver matches candidate files against the whitelist entries.
type Resolver struct {
	entries    []string
	normalized []string
}

// New builds a Resolver. Entries may be project-relative or absolute paths.
func New(entries []string) *Resolver {
	r := &Resolver{}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		n := Normalize(entry)
		if n == "" || n == "." || seen[n] {
			continue
		}
		seen[n] = true
		r.entries = append(r.entries, entry)
		r.normalized = append(r.normalized, n)
	}
	return r
}

// Normalize unifies separators, strips leading "./" and cleans the path.
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return path.Clean(p)
}

// IsWhitelisted reports whether p equals an entry or ends with "/" + entry.
func (r *Resolver) IsWhitelisted(p string) bool {
	candidate := Normalize(p)
	if candidate == "" {
		return false
	}
	for _, entry := range r.normalized {
		if candidate == entry || strings.HasSuffix(candidate, "/"+entry) {
			return true
		}
	}
	return false
}

// Entries returns the effective whitelist as configured, without duplicates.
func (r *Resolver) Entries() []string {
	return append([]string(nil), r.entries...)
}
