// Package git locates the repository an audit runs in.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/scan-io-git/egressguard/internal/findings"
)

var ErrNotRepository = errors.New("folder is not inside a git repository")

// RepositoryMetadata describes the checkout an audit ran against.
type RepositoryMetadata struct {
	RootFolder    string  `json:"root_folder"`
	RepositoryURI string  `json:"repository_uri"`
	Subfolder     string  `json:"subfolder,omitempty"`
	BranchName    *string `json:"branch,omitempty"`
	CommitHash    *string `json:"commit,omitempty"`
}

// Provenance converts the metadata into the report's repository section.
func (md *RepositoryMetadata) Provenance() *findings.Repository {
	repo := &findings.Repository{
		URI:       md.RepositoryURI,
		Subfolder: md.Subfolder,
	}
	if md.BranchName != nil {
		repo.Branch = *md.BranchName
	}
	if md.CommitHash != nil {
		repo.Commit = *md.CommitHash
	}
	return repo
}

// FindRepositoryRoot walks up from folder to the closest directory git can open.
func FindRepositoryRoot(folder string) (string, error) {
	if folder == "" {
		return "", fmt.Errorf("source folder is not set")
	}
	current, err := filepath.Abs(folder)
	if err != nil {
		return "", err
	}

	for {
		if _, err := git.PlainOpen(current); err == nil {
			return filepath.Clean(current), nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", ErrNotRepository
}

// CollectRepositoryMetadata returns branch, commit and origin of the repository containing folder.
// A repository without commits yields nil branch and commit; one without an origin remote
// is identified by a file:// URI of its root.
func CollectRepositoryMetadata(folder string) (*RepositoryMetadata, error) {
	root, err := FindRepositoryRoot(folder)
	if err != nil {
		return nil, err
	}
	md := &RepositoryMetadata{
		RootFolder:    root,
		RepositoryURI: "file://" + filepath.ToSlash(root),
	}

	if abs, err := filepath.Abs(folder); err == nil {
		if rel, err := filepath.Rel(root, abs); err == nil && rel != "." {
			md.Subfolder = filepath.ToSlash(rel)
		}
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branch := head.Name().Short()
			md.BranchName = &branch
		}
		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			md.RepositoryURI = strings.TrimSuffix(cfg.URLs[0], ".git")
		}
	}

	return md, nil
}
