// Package git lists the contracts a working tree has changed.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RepositoryRoot returns the absolute path to the repository root.
func RepositoryRoot(ctx context.Context, repoPath string) (string, error) {
	stdout, stderr, err := runGitCommand(ctx, repoPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", gitCommandError(err, stderr)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// ChangedContracts returns the absolute paths of the .sol files that are
// staged, modified or untracked under repoPath, sorted. Deleted files are
// left out.
func ChangedContracts(ctx context.Context, repoPath string) ([]string, error) {
	if _, err := os.Stat(repoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("repository path does not exist: %s", repoPath)
	}

	repoRoot, err := RepositoryRoot(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("%s is not a git repository: %w", repoPath, err)
	}

	stdout, stderr, err := runGitCommand(ctx, repoPath, "status", "--porcelain", "--untracked-files=all")
	if err != nil {
		return nil, fmt.Errorf("failed to get uncommitted files: %w", gitCommandError(err, stderr))
	}

	var contracts []string
	for _, relPath := range parsePorcelain(string(stdout)) {
		if strings.EqualFold(filepath.Ext(relPath), ".sol") {
			contracts = append(contracts, filepath.Join(repoRoot, filepath.FromSlash(relPath)))
		}
	}
	sort.Strings(contracts)
	return contracts, nil
}

// parsePorcelain returns the paths listed by "git status --porcelain",
// skipping deletions and using the new name of renamed files.
func parsePorcelain(output string) []string {
	var files []string
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}

		// Porcelain format: XY filename
		statusX, statusY := line[0], line[1]
		if statusX == 'D' || statusY == 'D' {
			continue
		}

		filePath := strings.TrimSpace(line[3:])
		if _, renamed, ok := strings.Cut(filePath, " -> "); ok {
			filePath = renamed
		}
		filePath = strings.Trim(filePath, `"`)

		if filePath != "" {
			files = append(files, filePath)
		}
	}
	return files
}
