package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestRepo sets up a synthetic test repository in a temp directory.
// Returns the root path.
func createTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	dirs := []string{
		"src",
		"docs",
		"build",
		".git/objects", // .git should always be skipped
	}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	textFiles := map[string]string{
		"main.go":       "package main\n\nfunc main() {}\n",
		"README.md":     "# Test\n",
		"src/app.go":    "package src\n\nfunc App() {}\n",
		"src/util.go":   "package src\n\nfunc Util() {}\n",
		"docs/guide.md": "# Guide\n",
		".git/HEAD":     "ref: refs/heads/main\n",
	}
	for name, content := range textFiles {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	return root
}

// createBinaryFile writes a file with null bytes to simulate binary content.
func createBinaryFile(t *testing.T, path string) {
	t.Helper()
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// createLargeFile writes a file of the given size.
func createLargeFile(t *testing.T, path string, size int64) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = 'x'
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func pathsOf(candidates []Candidate) []string {
	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.Path
	}
	return paths
}

func TestWalkerBasicDiscovery(t *testing.T) {
	root := createTestRepo(t)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{Root: root})
	require.NoError(t, err)

	assert.Len(t, candidates, 5)

	paths := pathsOf(candidates)
	assert.Contains(t, paths, "main.go")
	assert.Contains(t, paths, "README.md")
	assert.Contains(t, paths, "src/app.go")
	assert.Contains(t, paths, "src/util.go")
	assert.Contains(t, paths, "docs/guide.md")
}

func TestWalkerSortedByPath(t *testing.T) {
	root := createTestRepo(t)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{Root: root})
	require.NoError(t, err)

	paths := pathsOf(candidates)
	assert.True(t, sort.SliceIsSorted(paths, func(i, j int) bool {
		return paths[i] < paths[j]
	}), "files should be sorted alphabetically by path")
}

func TestWalkerGitDirSkipped(t *testing.T) {
	root := createTestRepo(t)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{Root: root})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.False(t, c.Path == ".git/HEAD" || c.Path == ".git/objects",
			"should not include .git files, got: %s", c.Path)
	}
}

func TestWalkerHiddenFilesSkippedByDefault(t *testing.T) {
	root := createTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("SECRET=1\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".config", "app.toml"), []byte("x=1\n"), 0o644))

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{Root: root})
	require.NoError(t, err)

	paths := pathsOf(candidates)
	assert.NotContains(t, paths, ".env")
	assert.NotContains(t, paths, ".config/app.toml")
}

func TestWalkerIncludeHiddenRevealsDotfiles(t *testing.T) {
	root := createTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("SECRET=1\n"), 0o644))

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{Root: root, IncludeHidden: true})
	require.NoError(t, err)

	assert.Contains(t, pathsOf(candidates), ".env")
}

func TestWalkerIncludeHiddenStillSkipsGitDir(t *testing.T) {
	root := createTestRepo(t)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{Root: root, IncludeHidden: true})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.False(t, c.Path == ".git/HEAD", "include_hidden must not resurrect the hardcoded .git skip")
	}
}

func TestWalkerGitignoreRespected(t *testing.T) {
	root := createTestRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "output.js"), []byte("var x=1;\n"), 0o644))

	gitMatcher, err := NewGitignoreMatcher(root)
	require.NoError(t, err)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:             root,
		GitignoreMatcher: gitMatcher,
	})
	require.NoError(t, err)

	assert.NotContains(t, pathsOf(candidates), "build/output.js")
}

func TestWalkerFsearchignoreRespected(t *testing.T) {
	root := createTestRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".fsearchignore"), []byte("docs/\n"), 0o644))

	dotMatcher, err := NewDotignoreMatcher(root)
	require.NoError(t, err)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:             root,
		DotignoreMatcher: dotMatcher,
	})
	require.NoError(t, err)

	assert.NotContains(t, pathsOf(candidates), "docs/guide.md")
}

func TestWalkerDefaultIgnorerApplied(t *testing.T) {
	root := createTestRepo(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "pkg", "index.js"), []byte("module.exports = {}\n"), 0o644))

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:           root,
		DefaultIgnorer: NewDefaultIgnoreMatcher(),
	})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.NotContains(t, c.Path, "node_modules")
	}
}

func TestWalkerBinaryFilesSkipped(t *testing.T) {
	root := createTestRepo(t)
	createBinaryFile(t, filepath.Join(root, "image.png"))

	w := NewWalker()
	candidates, stats, err := w.Walk(context.Background(), WalkerConfig{Root: root})
	require.NoError(t, err)

	assert.NotContains(t, pathsOf(candidates), "image.png")
	assert.Equal(t, 1, stats.SkipReasons["binary"])
}

func TestWalkerSkipBinaryDetectionDisabled(t *testing.T) {
	root := createTestRepo(t)
	createBinaryFile(t, filepath.Join(root, "image.png"))

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:                root,
		SkipBinaryDetection: true,
	})
	require.NoError(t, err)

	assert.Contains(t, pathsOf(candidates), "image.png")
}

func TestWalkerLargeFilesSkipped(t *testing.T) {
	root := createTestRepo(t)
	createLargeFile(t, filepath.Join(root, "big.txt"), 200)

	w := NewWalker()
	candidates, stats, err := w.Walk(context.Background(), WalkerConfig{
		Root:           root,
		SkipLargeFiles: 100,
	})
	require.NoError(t, err)

	assert.NotContains(t, pathsOf(candidates), "big.txt")
	assert.Equal(t, 1, stats.SkipReasons["large_file"])
}

func TestWalkerExtensionFilter(t *testing.T) {
	root := createTestRepo(t)

	filter := NewPatternFilter(PatternFilterOptions{Extensions: []string{"go"}})

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:          root,
		PatternFilter: filter,
	})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.Equal(t, ".go", filepath.Ext(c.Path))
	}
	assert.True(t, len(candidates) > 0)
}

func TestWalkerIncludePattern(t *testing.T) {
	root := createTestRepo(t)

	filter := NewPatternFilter(PatternFilterOptions{Includes: []string{"src/**"}})

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:          root,
		PatternFilter: filter,
	})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.True(t, len(c.Path) > 4 && c.Path[:4] == "src/")
	}
}

func TestWalkerExcludePattern(t *testing.T) {
	root := createTestRepo(t)

	filter := NewPatternFilter(PatternFilterOptions{Excludes: []string{"docs/**"}})

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:          root,
		PatternFilter: filter,
	})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.False(t, len(c.Path) > 5 && c.Path[:5] == "docs/")
	}
}

func TestWalkerMaxDepth(t *testing.T) {
	root := createTestRepo(t)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:     root,
		MaxDepth: 1,
	})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.NotContains(t, c.Path, "/", "depth 1 should exclude nested files, got: %s", c.Path)
	}
}

func TestWalkerEmptyDirectory(t *testing.T) {
	root := t.TempDir()

	w := NewWalker()
	candidates, stats, err := w.Walk(context.Background(), WalkerConfig{Root: root})
	require.NoError(t, err)

	assert.Empty(t, candidates)
	assert.Equal(t, 0, stats.TotalFound)
	assert.Equal(t, 0, stats.TotalSkipped)
}

func TestWalkerNonExistentDirectory(t *testing.T) {
	w := NewWalker()
	_, _, err := w.Walk(context.Background(), WalkerConfig{Root: "/nonexistent/path/that/does/not/exist"})
	assert.Error(t, err)
}

func TestWalkerContextCancellation(t *testing.T) {
	root := createTestRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWalker()
	_, _, err := w.Walk(ctx, WalkerConfig{Root: root})
	assert.Error(t, err)
}

func TestWalkerContextTimeout(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 100; i++ {
		require.NoError(t, os.WriteFile(
			filepath.Join(root, fmt.Sprintf("file_%03d.txt", i)),
			[]byte(fmt.Sprintf("content %d\n", i)),
			0o644,
		))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()
	time.Sleep(1 * time.Millisecond)

	w := NewWalker()
	_, _, err := w.Walk(ctx, WalkerConfig{Root: root})
	assert.Error(t, err)
}

func TestWalkerStats(t *testing.T) {
	root := createTestRepo(t)
	createBinaryFile(t, filepath.Join(root, "image.png"))

	w := NewWalker()
	candidates, stats, err := w.Walk(context.Background(), WalkerConfig{Root: root})
	require.NoError(t, err)

	assert.Greater(t, stats.TotalFound, 0)
	assert.Greater(t, stats.TotalSkipped, 0)
	assert.NotNil(t, stats.SkipReasons)
	assert.Equal(t, 5, len(candidates))
}

func TestWalkerCandidateFields(t *testing.T) {
	root := createTestRepo(t)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{Root: root})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.NotEmpty(t, c.Path)
		assert.NotEmpty(t, c.AbsPath)
		assert.True(t, filepath.IsAbs(c.AbsPath))
		assert.Greater(t, c.Size, int64(0))
	}
}

func TestWalkerMultipleIgnoreSources(t *testing.T) {
	root := createTestRepo(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "lib.go"), []byte("package vendor\n"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "out.js"), []byte("var x;\n"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".fsearchignore"), []byte("vendor/\n"), 0o644))

	gitMatcher, err := NewGitignoreMatcher(root)
	require.NoError(t, err)

	dotMatcher, err := NewDotignoreMatcher(root)
	require.NoError(t, err)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:             root,
		GitignoreMatcher: gitMatcher,
		DotignoreMatcher: dotMatcher,
	})
	require.NoError(t, err)

	paths := pathsOf(candidates)
	assert.NotContains(t, paths, "build/out.js")
	assert.NotContains(t, paths, "vendor/lib.go")
}

func TestWalkerSkipLargeFilesZeroDisabled(t *testing.T) {
	root := t.TempDir()
	createLargeFile(t, filepath.Join(root, "big.txt"), 10000)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:           root,
		SkipLargeFiles: 0,
	})
	require.NoError(t, err)

	assert.Len(t, candidates, 1)
}

func TestWalkerSampleRepo(t *testing.T) {
	sampleRepo := filepath.Join("testdata", "sample-repo")
	projectRoot := findProjectRoot(t)
	sampleRepo = filepath.Join(projectRoot, "testdata", "sample-repo")

	if _, err := os.Stat(sampleRepo); os.IsNotExist(err) {
		t.Skip("testdata/sample-repo not found, skipping integration test")
	}

	gitMatcher, err := NewGitignoreMatcher(sampleRepo)
	require.NoError(t, err)

	dotMatcher, err := NewDotignoreMatcher(sampleRepo)
	require.NoError(t, err)

	w := NewWalker()
	candidates, _, err := w.Walk(context.Background(), WalkerConfig{
		Root:             sampleRepo,
		GitignoreMatcher: gitMatcher,
		DotignoreMatcher: dotMatcher,
		DefaultIgnorer:   NewDefaultIgnoreMatcher(),
		IncludeHidden:    true,
	})
	require.NoError(t, err)

	paths := pathsOf(candidates)
	assert.Contains(t, paths, "main.go")
	assert.Contains(t, paths, "README.md")
	assert.Contains(t, paths, "src/app.ts")
	assert.Contains(t, paths, "src/utils.ts")
	assert.Contains(t, paths, "src/test.spec.ts")
	assert.Contains(t, paths, ".gitignore")
	assert.Contains(t, paths, ".fsearchignore")

	assert.NotContains(t, paths, "dist/bundle.js")
	assert.NotContains(t, paths, "node_modules/pkg/index.js")
	assert.NotContains(t, paths, "docs/internal/notes.md")
}

func BenchmarkWalker1000Files(b *testing.B) {
	root := b.TempDir()

	for i := 0; i < 1000; i++ {
		err := os.WriteFile(
			filepath.Join(root, fmt.Sprintf("file_%04d.go", i)),
			[]byte(fmt.Sprintf("package main\n\nfunc f%d() {}\n", i)),
			0o644,
		)
		if err != nil {
			b.Fatal(err)
		}
	}

	w := NewWalker()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		candidates, _, err := w.Walk(ctx, WalkerConfig{Root: root})
		if err != nil {
			b.Fatal(err)
		}
		if len(candidates) != 1000 {
			b.Fatalf("expected 1000 files, got %d", len(candidates))
		}
	}
}

func BenchmarkWalkerWithFilters(b *testing.B) {
	root := b.TempDir()

	dirs := []string{"src", "test", "docs", "vendor", "build"}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			b.Fatal(err)
		}
	}

	for i := 0; i < 200; i++ {
		for _, d := range dirs {
			err := os.WriteFile(
				filepath.Join(root, d, fmt.Sprintf("file_%04d.go", i)),
				[]byte(fmt.Sprintf("package %s\n\nfunc f%d() {}\n", d, i)),
				0o644,
			)
			if err != nil {
				b.Fatal(err)
			}
		}
	}

	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("vendor/\nbuild/\n"), 0o644); err != nil {
		b.Fatal(err)
	}

	gitMatcher, err := NewGitignoreMatcher(root)
	if err != nil {
		b.Fatal(err)
	}

	filter := NewPatternFilter(PatternFilterOptions{Extensions: []string{"go"}})

	w := NewWalker()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, err := w.Walk(ctx, WalkerConfig{
			Root:             root,
			GitignoreMatcher: gitMatcher,
			DefaultIgnorer:   NewDefaultIgnoreMatcher(),
			PatternFilter:    filter,
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}
