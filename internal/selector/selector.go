// Package selector expands include globs into the set of candidate source files.
package selector

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/egressguard/pkg/shared/config"
)

// Options configures a file selection.
type Options struct {
	Root             string
	Include          []string
	IgnoreDirs       []string
	RespectGitignore bool
}

type pattern struct {
	glob   string
	negate bool
}

// Selector walks a root directory and matches files against ordered include patterns.
type Selector struct {
	opts     Options
	patterns []pattern
	ignored  map[string]bool
	logger   hclog.Logger
}

// New validates the include patterns and builds a Selector.
func New(opts Options, logger hclog.Logger) (*Selector, error) {
	s := &Selector{
		opts:    opts,
		ignored: make(map[string]bool, len(opts.IgnoreDirs)),
		logger:  logger,
	}
	for _, dir := range opts.IgnoreDirs {
		s.ignored[dir] = true
	}
	for _, raw := range opts.Include {
		if err := config.ValidateIncludePattern(raw); err != nil {
			return nil, err
		}
		p := pattern{glob: strings.TrimSpace(raw)}
		if strings.HasPrefix(p.glob, "!") {
			p.negate = true
			p.glob = p.glob[1:]
		}
		p.glob = strings.TrimPrefix(filepath.ToSlash(p.glob), "./")
		if !doublestar.ValidatePattern(p.glob) {
			return nil, fmt.Errorf("invalid include pattern %q", raw)
		}
		s.patterns = append(s.patterns, p)
	}
	return s, nil
}

// Select returns the sorted absolute paths of all matching files.
func (s *Selector) Select() ([]string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", s.opts.Root, err)
	}

	var matcher gitignore.Matcher
	if s.opts.RespectGitignore {
		matcher, err = loadGitignore(root)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	var selected []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access %q: %w", path, err)
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.ignored[d.Name()] {
				s.logger.Trace("skipping ignored directory", "path", rel)
				return filepath.SkipDir
			}
			if matcher != nil && matcher.Match(strings.Split(rel, "/"), true) {
				s.logger.Trace("skipping gitignored directory", "path", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matcher != nil && matcher.Match(strings.Split(rel, "/"), false) {
			return nil
		}
		if s.matches(rel) && !seen[path] {
			seen[path] = true
			selected = append(selected, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(selected)
	s.logger.Debug("candidate files selected", "root", root, "count", len(selected))
	return selected, nil
}

// matches evaluates the patterns in order; a later negation removes an earlier match.
func (s *Selector) matches(rel string) bool {
	if HasIgnoredSegment(rel, s.ignored) {
		return false
	}
	included := false
	for _, p := range s.patterns {
		if included == !p.negate {
			continue
		}
		ok, err := doublestar.Match(p.glob, rel)
		if err != nil || !ok {
			continue
		}
		included = !p.negate
	}
	return included
}

// HasIgnoredSegment reports whether any directory segment of a slash path is ignored.
func HasIgnoredSegment(rel string, ignored map[string]bool) bool {
	segments := strings.Split(rel, "/")
	for _, segment := range segments[:len(segments)-1] {
		if ignored[segment] {
			return true
		}
	}
	return false
}
