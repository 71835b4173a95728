package search

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/fssearchd/fssearchd/internal/discovery"
)

// RunOptions carries the knobs ExecuteDriver needs beyond the immutable
// SearchOptions — walk concurrency and the per-worker buffer size — both
// sourced from the resolved server configuration rather than the client
// request.
type RunOptions struct {
	WalkConcurrency  int
	ResultBufferSize int
}

// Execute is ExecuteDriver (spec.md §4.4): it builds the walk configuration
// from opts, discovers candidate files honoring the five ignore sources and
// the type/file_pattern/max_depth/max_filesize filters, then dispatches to
// the mode-appropriate visitor across a bounded worker pool. Counts-mode
// finalisation and the terminal MarkComplete happen here, exactly as
// ExecuteDriver is the single caller of all three visitor drivers.
//
// On any engine/configuration build failure, the error is recorded on the
// session and the walk never runs, matching spec.md §7's "Fatal per-session"
// category.
func Execute(session *Session, validatedRoot string, opts SearchOptions, run RunOptions) {
	defer session.MarkComplete()

	cfg, err := buildWalkerConfig(validatedRoot, opts)
	if err != nil {
		session.SetError(fmt.Sprintf("building walk configuration: %v", err))
		return
	}

	walker := discovery.NewWalker()
	candidates, _, err := walker.Walk(session.walkContext(), cfg)
	if err != nil {
		session.SetError(fmt.Sprintf("walking %s: %v", validatedRoot, err))
		return
	}

	concurrency := run.WalkConcurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	bufferSize := run.ResultBufferSize

	switch {
	case opts.ListFilesOnly || opts.SearchType == SearchTypeListFiles:
		runFilesMode(session, candidates, concurrency, bufferSize)
	case opts.SearchType == SearchTypeFilenames:
		runFilenameMode(session, candidates, opts, concurrency, bufferSize)
	default:
		if err := runContentMode(session, candidates, opts, concurrency, bufferSize); err != nil {
			session.SetError(err.Error())
			return
		}
	}

	if session.IsCancelled() {
		session.MarkWasIncomplete()
	}

	if session.OutputMode == OutputCounts {
		finalizeCounts(session)
	}
}

// finalizeCounts implements the Counts-mode finalisation step from §4.4:
// file_counts is read into an ordered result vector, installed as the
// session's results (replacing whatever was accumulated, which invariant 3
// requires to be empty at this point outside of debug assertions), and
// total_files is folded into total_matches so both counters agree once the
// walk is done.
func finalizeCounts(session *Session) {
	snapshot := session.FileCountsSnapshot()
	session.ReplaceResults(snapshot)
	session.totalMatches.Store(session.totalFiles.Load())
}

// buildWalkerConfig translates SearchOptions into a discovery.WalkerConfig:
// it composes the five ignore sources (toggled uniformly by no_ignore per
// §4.4), a PatternFilter from file_pattern/type/type_not, and the
// size/depth constraints. Binary detection is left to the content visitor
// itself (binary_mode has three distinct behaviors the walker-level
// skip-only check cannot express), so SkipBinaryDetection is always true
// here.
func buildWalkerConfig(root string, opts SearchOptions) (discovery.WalkerConfig, error) {
	cfg := discovery.WalkerConfig{
		Root:                root,
		SkipBinaryDetection: true,
		IncludeHidden:       opts.IncludeHidden,
	}

	if opts.MaxFilesize != nil {
		cfg.SkipLargeFiles = *opts.MaxFilesize
	}
	if opts.MaxDepth != nil {
		cfg.MaxDepth = *opts.MaxDepth
	}

	cfg.DefaultIgnorer = discovery.NewDefaultIgnoreMatcher()

	if !opts.NoIgnore {
		gitMatcher, err := discovery.NewGitignoreMatcher(root)
		if err != nil {
			return cfg, fmt.Errorf("loading gitignore rules: %w", err)
		}
		cfg.GitignoreMatcher = gitMatcher

		dotMatcher, err := discovery.NewDotignoreMatcher(root)
		if err != nil {
			return cfg, fmt.Errorf("loading fsearchignore rules: %w", err)
		}
		cfg.DotignoreMatcher = dotMatcher

		excludeMatcher, err := discovery.NewExcludeMatcher(root)
		if err != nil {
			return cfg, fmt.Errorf("loading exclude file: %w", err)
		}
		cfg.ExcludeMatcher = excludeMatcher

		globalMatcher, err := discovery.NewGlobalMatcher()
		if err != nil {
			return cfg, fmt.Errorf("loading global ignore file: %w", err)
		}
		cfg.GlobalMatcher = globalMatcher

		parentMatcher, err := discovery.NewParentMatcher(root)
		if err != nil {
			return cfg, fmt.Errorf("loading ancestor gitignore rules: %w", err)
		}
		cfg.ParentMatcher = parentMatcher
	}

	filterOpts := discovery.PatternFilterOptions{}
	if opts.FilePattern != "" {
		filterOpts.Includes = []string{opts.FilePattern}
	}
	if opts.Type != "" {
		filterOpts.Extensions = splitCommaList(opts.Type)
	}
	if opts.TypeNot != "" {
		for _, ext := range splitCommaList(opts.TypeNot) {
			filterOpts.Excludes = append(filterOpts.Excludes, "**/*."+ext)
		}
	}
	if filterOpts.Includes != nil || filterOpts.Extensions != nil || filterOpts.Excludes != nil {
		cfg.PatternFilter = discovery.NewPatternFilter(filterOpts)
	}

	return cfg, nil
}

func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// visitFunc processes one discovered candidate against a worker's local
// ResultBuffer, reporting whether the whole walk should stop (a reservation
// failure or an early_termination exact match).
type visitFunc func(buf *ResultBuffer, c discovery.Candidate) (quit bool)

// parallelWalk fans candidates out across a fixed pool of worker goroutines
// — the Go stand-in for spec.md's parallel directory-walking thread pool —
// each with its own ResultBuffer flushed on exit via defer, so a worker that
// stops early for any reason (quit signal, cancellation) never drops
// buffered results. Workers poll cancellation at the coarse, per-entry
// granularity described in §5; the finer 100-record granularity within one
// file is the caller's responsibility (runContentMode).
func parallelWalk(session *Session, candidates []discovery.Candidate, concurrency, bufferSize int, fn visitFunc) {
	if len(candidates) == 0 {
		return
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > len(candidates) {
		concurrency = len(candidates)
	}

	jobs := make(chan discovery.Candidate)
	var quit atomic.Bool

	var g errgroup.Group
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			buf := NewResultBuffer(session, bufferSize)
			defer buf.Flush()

			for c := range jobs {
				if quit.Load() || session.IsCancelled() {
					continue
				}
				if fn(buf, c) {
					quit.Store(true)
				}
			}
			return nil
		})
	}

	for _, c := range candidates {
		if quit.Load() || session.IsCancelled() {
			break
		}
		jobs <- c
	}
	close(jobs)

	_ = g.Wait()
}
