package discovery

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// ParentMatcher evaluates .gitignore files found in directories above a
// search root, the same way git honors the full ignore chain from a
// repository's working-tree root even when a command is run from a
// subdirectory. Ancestor scanning stops at the first directory containing a
// .git entry (the repository boundary) or at the filesystem root, whichever
// comes first.
type ParentMatcher struct {
	// ancestors is ordered from the repository root down to root's direct
	// parent, matching GitignoreMatcher's root-to-leaf evaluation order.
	ancestors []parentLevel
	logger    *slog.Logger
}

type parentLevel struct {
	matcher *gitignore.GitIgnore
	// relToRoot is this ancestor directory's path relative to the search
	// root, e.g. ".." or "../..". A path relative to the search root is
	// translated to this ancestor's frame by joining with relToRoot.
	relToRoot string
}

// NewParentMatcher walks upward from rootDir collecting .gitignore files
// from ancestor directories, starting at rootDir's parent and stopping after
// the first ancestor that contains .git, or at the filesystem root. A .git
// entry in rootDir itself is not consulted. If no ancestor has a .gitignore,
// the returned matcher has no levels and never matches.
func NewParentMatcher(rootDir string) (*ParentMatcher, error) {
	logger := slog.Default().With("component", "parent-ignore")

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	var levels []parentLevel
	dir := filepath.Dir(absRoot)
	prev := absRoot

	for {
		if dir == prev {
			break // reached filesystem root
		}

		giPath := filepath.Join(dir, ".gitignore")
		if compiled, err := gitignore.CompileIgnoreFile(giPath); err == nil {
			relToRoot, err := filepath.Rel(dir, absRoot)
			if err == nil {
				levels = append(levels, parentLevel{matcher: compiled, relToRoot: relToRoot})
				logger.Debug("loaded ancestor .gitignore", "path", giPath)
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break // repository boundary
		}

		prev = dir
		dir = filepath.Dir(dir)
	}

	// Reverse so evaluation runs root-of-repo first, mirroring
	// GitignoreMatcher's root-to-leaf order.
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}

	return &ParentMatcher{ancestors: levels, logger: logger}, nil
}

// IsIgnored reports whether path, relative to the search root, matches a
// pattern from any ancestor .gitignore.
func (m *ParentMatcher) IsIgnored(path string, isDir bool) bool {
	if len(m.ancestors) == 0 {
		return false
	}

	normalized := strings.TrimPrefix(filepath.ToSlash(path), "./")
	if normalized == "" || normalized == "." {
		return false
	}
	if isDir && !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	for _, lvl := range m.ancestors {
		rel := filepath.ToSlash(filepath.Join(lvl.relToRoot, normalized))
		if isDir && !strings.HasSuffix(rel, "/") {
			rel += "/"
		}
		if lvl.matcher.MatchesPath(rel) {
			return true
		}
	}

	return false
}

// Compile-time interface compliance check.
var _ Ignorer = (*ParentMatcher)(nil)
