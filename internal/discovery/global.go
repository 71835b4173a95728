package discovery

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// GlobalMatcher evaluates the user's global gitignore file, the same file
// git consults via core.excludesFile. fssearchd does not read git config, so
// it follows git's own fallback order: $XDG_CONFIG_HOME/git/ignore, then
// ~/.config/git/ignore.
type GlobalMatcher struct {
	matcher *gitignore.GitIgnore
	logger  *slog.Logger
}

// NewGlobalMatcher loads the global gitignore file if one exists. A missing
// file is not an error: the returned matcher simply never matches.
func NewGlobalMatcher() (*GlobalMatcher, error) {
	logger := slog.Default().With("component", "global-ignore")

	path := globalIgnorePath()
	if path == "" {
		return &GlobalMatcher{logger: logger}, nil
	}

	compiled, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		logger.Debug("no global gitignore loaded", "path", path, "error", err)
		return &GlobalMatcher{logger: logger}, nil
	}

	logger.Debug("loaded global gitignore", "path", path)
	return &GlobalMatcher{matcher: compiled, logger: logger}, nil
}

// globalIgnorePath resolves the global gitignore path using the same
// precedence git applies when core.excludesFile is unset.
func globalIgnorePath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "git", "ignore")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "git", "ignore")
	}
	return ""
}

// IsIgnored reports whether path matches a pattern in the global gitignore.
func (m *GlobalMatcher) IsIgnored(path string, isDir bool) bool {
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
var _ Ignorer = (*GlobalMatcher)(nil)
