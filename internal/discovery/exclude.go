package discovery

import (
	"log/slog"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// ExcludeMatcher evaluates patterns from a repository's .git/info/exclude
// file, the same local-only ignore list git itself consults alongside
// .gitignore. Unlike GitignoreMatcher it is single-file and non-hierarchical:
// exclude applies uniformly to the whole tree rooted at the repository.
type ExcludeMatcher struct {
	matcher *gitignore.GitIgnore
	logger  *slog.Logger
}

// NewExcludeMatcher loads rootDir/.git/info/exclude if present. A missing
// file is not an error: the returned matcher simply never matches.
func NewExcludeMatcher(rootDir string) (*ExcludeMatcher, error) {
	logger := slog.Default().With("component", "exclude")

	path := filepath.Join(rootDir, ".git", "info", "exclude")
	compiled, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		logger.Debug("no .git/info/exclude loaded", "path", path, "error", err)
		return &ExcludeMatcher{logger: logger}, nil
	}

	logger.Debug("loaded .git/info/exclude", "path", path)
	return &ExcludeMatcher{matcher: compiled, logger: logger}, nil
}

// IsIgnored reports whether path matches a pattern in .git/info/exclude.
func (m *ExcludeMatcher) IsIgnored(path string, isDir bool) bool {
	if m.matcher == nil {
		return false
	}

	normalized := strings.TrimPrefix(filepath.ToSlash(path), "./")
	if normalized == "" || normalized == "." {
		return false
	}
	if isDir && !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	return m.matcher.MatchesPath(normalized)
}

// Compile-time interface compliance check.
var _ Ignorer = (*ExcludeMatcher)(nil)
