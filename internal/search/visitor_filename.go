package search

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fssearchd/fssearchd/internal/discovery"
)

// filenameMatcher holds everything runFilenameMode needs to decide per-entry
// membership, compiled once per session rather than per candidate. Grounded
// on original_source's FileSearchBuilder/FileSearchVisitor split: the
// builder-time work (glob compilation, case normalization) happens once,
// the per-entry work happens in the hot loop.
type filenameMatcher struct {
	opts SearchOptions

	useGlob       bool
	hasWildcards  bool
	pattern       string
	patternLower  string
	isLower       bool
	wordBoundary  bool
}

func newFilenameMatcher(opts SearchOptions) *filenameMatcher {
	literal := opts.LiteralSearch != nil && *opts.LiteralSearch
	m := &filenameMatcher{
		opts:         opts,
		useGlob:      !literal,
		pattern:      opts.Pattern,
		patternLower: strings.ToLower(opts.Pattern),
		isLower:      opts.Pattern == strings.ToLower(opts.Pattern),
		wordBoundary: opts.BoundaryMode == BoundaryWord,
	}
	m.hasWildcards = strings.ContainsAny(opts.Pattern, "*?[")
	return m
}

// isBoundaryChar reports whether c is one of the filename word-boundary
// separators from spec.md §4.3: '.', '-', '_', '/'.
func isBoundaryChar(c byte) bool {
	return c == '.' || c == '-' || c == '_' || c == '/'
}

// caseAdjust resolves case_mode against a (fileName, pattern) pair,
// returning the strings actually compared.
func (m *filenameMatcher) caseAdjust(fileName string) (haystack, needle string) {
	switch m.opts.CaseMode {
	case CaseInsensitive:
		return strings.ToLower(fileName), m.patternLower
	case CaseSmart:
		if m.isLower {
			return strings.ToLower(fileName), m.patternLower
		}
		return fileName, m.pattern
	default: // CaseSensitive
		return fileName, m.pattern
	}
}

// matchesWordBoundary implements spec.md §4.3's word-boundary substring
// rule: the pattern must appear bounded by a boundary separator or
// start/end of string on both sides.
func (m *filenameMatcher) matchesWordBoundary(fileName string) bool {
	haystack, needle := m.caseAdjust(fileName)
	if needle == "" {
		return false
	}

	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		matchPos := start + idx
		matchEnd := matchPos + len(needle)

		beforeOK := matchPos == 0 || isBoundaryChar(haystack[matchPos-1])
		afterOK := matchEnd == len(haystack) || isBoundaryChar(haystack[matchEnd])
		if beforeOK && afterOK {
			return true
		}
		start = matchPos + 1
		if start >= len(haystack) {
			return false
		}
	}
}

// Matches implements the three-way rule from spec.md §4.3: glob mode (no
// word boundary), word-boundary substring mode, or plain substring mode.
func (m *filenameMatcher) Matches(fileName string) bool {
	if m.useGlob && !m.wordBoundary {
		pattern, name := m.pattern, fileName
		if m.opts.CaseMode == CaseInsensitive || (m.opts.CaseMode == CaseSmart && m.isLower) {
			pattern, name = strings.ToLower(pattern), strings.ToLower(fileName)
		}
		ok, _ := doublestar.Match(pattern, name)
		return ok
	}

	if m.wordBoundary {
		return m.matchesWordBoundary(fileName)
	}

	haystack, needle := m.caseAdjust(fileName)
	return strings.Contains(haystack, needle)
}

// IsExactMatch implements early_termination's "stop current subtree" check:
// the pattern equals the whole file name, or the glob pattern contains no
// wildcards and matches.
func (m *filenameMatcher) IsExactMatch(fileName string) bool {
	if m.wordBoundary {
		if m.useGlob {
			if m.hasWildcards {
				return false
			}
			ok, _ := doublestar.Match(m.pattern, fileName)
			return ok
		}
		haystack, needle := m.caseAdjust(fileName)
		return haystack == needle
	}

	if m.useGlob {
		if m.hasWildcards {
			return false
		}
		ok, _ := doublestar.Match(m.pattern, fileName)
		return ok
	}

	haystack, needle := m.caseAdjust(fileName)
	return haystack == needle
}

// runFilenameMode drives FilenameMatch: it filters candidates by filename
// against the compiled matcher, reserving one match slot per hit. When
// early_termination is set, the first exact match stops the whole walk
// (spec.md models this as quitting the current thread's subtree; this
// single-pool implementation quits the shared walk outright, the closest
// analogue when every "thread" shares one candidate queue).
func runFilenameMode(session *Session, candidates []discovery.Candidate, opts SearchOptions, concurrency, bufferSize int) {
	matcher := newFilenameMatcher(opts)

	parallelWalk(session, candidates, concurrency, bufferSize, func(buf *ResultBuffer, c discovery.Candidate) (quit bool) {
		fileName := filepath.Base(c.Path)
		if !matcher.Matches(fileName) {
			return false
		}

		if !session.ReserveMatch() {
			return true
		}

		modified, accessed, created := fileTimes(c.AbsPath)
		buf.Add(SearchResult{
			File:     c.Path,
			Kind:     KindFile,
			Modified: modified,
			Accessed: accessed,
			Created:  created,
		})

		session.MaybeTouchLastRead()

		if opts.EarlyTermination && matcher.IsExactMatch(fileName) {
			return true
		}
		return false
	})
}
