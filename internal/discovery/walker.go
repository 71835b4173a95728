package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Candidate is a single non-ignored, non-binary, non-oversized file found
// while walking a directory tree. It carries just enough metadata for a
// search visitor to decide whether and how to process the file; unlike the
// teacher's discovery pipeline, the walker never reads file content itself.
type Candidate struct {
	// Path is the root-relative, slash-separated path.
	Path string

	// AbsPath is the absolute path, with any symlink already resolved to
	// its target.
	AbsPath string

	// Size is the file size in bytes.
	Size int64

	// IsSymlink reports whether the original directory entry was a symlink.
	IsSymlink bool
}

// WalkerConfig holds the ignore sources and filters applied while walking a
// directory tree.
type WalkerConfig struct {
	// Root is the target directory to walk.
	Root string

	// GitignoreMatcher handles .gitignore pattern matching.
	GitignoreMatcher Ignorer

	// DotignoreMatcher handles .fsearchignore pattern matching.
	DotignoreMatcher Ignorer

	// DefaultIgnorer handles built-in default ignore patterns.
	DefaultIgnorer Ignorer

	// ExcludeMatcher handles .git/info/exclude pattern matching.
	ExcludeMatcher Ignorer

	// GlobalMatcher handles the user's global gitignore file.
	GlobalMatcher Ignorer

	// ParentMatcher handles .gitignore files found in ancestors of Root.
	ParentMatcher Ignorer

	// PatternFilter applies include/exclude/extension filtering.
	PatternFilter *PatternFilter

	// SkipLargeFiles is the file size threshold in bytes. Files exceeding
	// this size are skipped. A value of 0 disables the check.
	SkipLargeFiles int64

	// MaxDepth caps how many directory levels below Root are descended
	// into. A value of 0 means unlimited.
	MaxDepth int

	// SkipBinaryDetection disables the binary sniff, used by modes (such
	// as FilesMode) that only need names and metadata.
	SkipBinaryDetection bool

	// IncludeHidden disables the dotfile/dotdir skip. False by default,
	// matching the teacher's ignore-by-default posture for anything
	// starting with ".".
	IncludeHidden bool
}

// Walker is a sequential directory-tree traversal engine that applies
// ignore rules, symlink-loop detection, size limits, and pattern filters,
// producing the ordered list of files an upstream search visitor should
// process. It does not itself read file content or apply bounded
// concurrency; that responsibility belongs to whatever drives a walk's
// results (see internal/search's per-mode drivers), since the right amount
// of parallelism for a regex match is different from a plain name match.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new Walker instance.
func NewWalker() *Walker {
	return &Walker{
		logger: slog.Default().With("component", "walker"),
	}
}

// WalkStats summarizes a completed walk for diagnostics.
type WalkStats struct {
	TotalFound   int
	TotalSkipped int
	SkipReasons  map[string]int
}

// Walk discovers files in the directory tree rooted at cfg.Root, applying
// all configured ignore sources and filters, and returns the resulting
// candidates sorted alphabetically by path along with walk statistics.
// Context cancellation stops the walk promptly.
func (w *Walker) Walk(ctx context.Context, cfg WalkerConfig) ([]Candidate, WalkStats, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, WalkStats{}, fmt.Errorf("resolving root path %s: %w", cfg.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, WalkStats{}, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, WalkStats{}, fmt.Errorf("root %s is not a directory", root)
	}

	composite := NewCompositeIgnorer(
		cfg.DefaultIgnorer,
		cfg.GitignoreMatcher,
		cfg.DotignoreMatcher,
		cfg.ExcludeMatcher,
		cfg.GlobalMatcher,
		cfg.ParentMatcher,
	)

	symResolver := NewSymlinkResolver()

	var candidates []Candidate
	skipReasons := make(map[string]int)
	var mu sync.Mutex
	totalFound := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			w.logger.Debug("walk error", "path", path, "error", walkErr)
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if relPath == "." {
			return nil
		}

		isDir := d.IsDir()

		if isDir && d.Name() == ".git" {
			return fs.SkipDir
		}

		if !cfg.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if isDir {
				mu.Lock()
				skipReasons["hidden_dir"]++
				mu.Unlock()
				return fs.SkipDir
			}
			mu.Lock()
			totalFound++
			skipReasons["hidden"]++
			mu.Unlock()
			return nil
		}

		if cfg.MaxDepth > 0 && isDir {
			if strings.Count(relPath, "/")+1 > cfg.MaxDepth {
				return fs.SkipDir
			}
		}

		if composite.IsIgnored(relPath, isDir) {
			if isDir {
				mu.Lock()
				skipReasons["ignored_dir"]++
				mu.Unlock()
				return fs.SkipDir
			}
			mu.Lock()
			totalFound++
			skipReasons["ignored"]++
			mu.Unlock()
			return nil
		}

		if isDir {
			return nil
		}

		if cfg.MaxDepth > 0 && strings.Count(relPath, "/")+1 > cfg.MaxDepth {
			return nil
		}

		mu.Lock()
		totalFound++
		mu.Unlock()

		isSymlink := d.Type()&os.ModeSymlink != 0
		absPath := path
		if isSymlink {
			realPath, isLoop, err := symResolver.Resolve(path)
			if err != nil {
				mu.Lock()
				skipReasons["symlink_error"]++
				mu.Unlock()
				return nil
			}
			if isLoop {
				mu.Lock()
				skipReasons["symlink_loop"]++
				mu.Unlock()
				return nil
			}
			symResolver.MarkVisited(realPath)
			absPath = realPath
		}

		fileInfo, err := os.Stat(absPath)
		if err != nil {
			mu.Lock()
			skipReasons["stat_error"]++
			mu.Unlock()
			return nil
		}

		if cfg.SkipLargeFiles > 0 && fileInfo.Size() > cfg.SkipLargeFiles {
			mu.Lock()
			skipReasons["large_file"]++
			mu.Unlock()
			return nil
		}

		if !cfg.SkipBinaryDetection {
			isBin, binErr := IsBinary(absPath)
			if binErr == nil && isBin {
				mu.Lock()
				skipReasons["binary"]++
				mu.Unlock()
				return nil
			}
		}

		if cfg.PatternFilter != nil && cfg.PatternFilter.HasFilters() {
			if !cfg.PatternFilter.Matches(relPath) {
				mu.Lock()
				skipReasons["pattern_filter"]++
				mu.Unlock()
				return nil
			}
		}

		mu.Lock()
		candidates = append(candidates, Candidate{
			Path:      relPath,
			AbsPath:   absPath,
			Size:      fileInfo.Size(),
			IsSymlink: isSymlink,
		})
		mu.Unlock()

		return nil
	})

	if walkErr != nil {
		return nil, WalkStats{}, fmt.Errorf("walking directory %s: %w", root, walkErr)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Path < candidates[j].Path
	})

	totalSkipped := 0
	for _, count := range skipReasons {
		totalSkipped += count
	}

	w.logger.Debug("walk complete",
		"candidates", len(candidates),
		"total_found", totalFound,
		"total_skipped", totalSkipped,
	)

	return candidates, WalkStats{
		TotalFound:   totalFound,
		TotalSkipped: totalSkipped,
		SkipReasons:  skipReasons,
	}, nil
}
