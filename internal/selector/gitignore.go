package selector

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// loadGitignore reads every .gitignore below root into a single matcher.
func loadGitignore(root string) (gitignore.Matcher, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore patterns under %q: %w", root, err)
	}
	return gitignore.NewMatcher(patterns), nil
}
