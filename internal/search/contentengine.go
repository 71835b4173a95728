package search

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fssearchd/fssearchd/internal/discovery"
)

// contentMatch is one line-level hit produced by searchFileContent, before
// it has been attached to file metadata or folded into an output-mode
// specific SearchResult. It is the Go analogue of the external regex engine
// black box's per-file JSON-lines output that spec.md §1 places out of
// scope for the core — this repo's stand-in is built directly on
// regexp/bufio since no example repo in the pack imports an alternative
// regex/search engine (see DESIGN.md).
type contentMatch struct {
	Line             int
	LineText         string
	MatchText        string
	IsContext        bool
	IsBinary         bool
	BinarySuppressed bool
}

// suppressionMarker replaces line content when a binary file is searched
// under BinarySearchSuppress: a match is still reported (and counted) but
// its text is never surfaced.
const suppressionMarker = "[binary file content suppressed]"

// compiledPattern is a content/filename pattern ready to match, plus the
// bookkeeping compilePattern needs to implement the boundary/case/literal
// rules of spec.md §4.3/§4.4.
type compiledPattern struct {
	re *regexp.Regexp
}

// compilePattern builds the regular expression content search matches
// against, honoring literal_search, case_mode, boundary_mode, and
// multiline. Per spec.md §9's "Engine fallback" note, pattern_mode is
// three-valued: only when LiteralSearch is nil (Inferred) does a regex
// compile failure silently retry as a literal string; an explicit
// LiteralSearch=false that fails to compile is a fatal per-session
// configuration error.
func compilePattern(opts SearchOptions) (*compiledPattern, error) {
	inferred := opts.LiteralSearch == nil
	literal := !inferred && *opts.LiteralSearch

	build := func(lit bool) (*regexp.Regexp, error) {
		pattern := opts.Pattern
		if lit {
			pattern = regexp.QuoteMeta(pattern)
		}

		switch opts.BoundaryMode {
		case BoundaryWord:
			pattern = `\b(?:` + pattern + `)\b`
		case BoundaryLine:
			pattern = `^(?:` + pattern + `)$`
		}

		var flags string
		if caseInsensitive(opts) {
			flags += "i"
		}
		if opts.Multiline {
			flags += "s"
		}
		if flags != "" {
			pattern = "(?" + flags + ")" + pattern
		}

		return regexp.Compile(pattern)
	}

	re, err := build(literal)
	if err != nil {
		if inferred {
			// Inferred mode: retry as a literal string before giving up.
			re, err = build(true)
		}
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", opts.Pattern, err)
		}
	}

	return &compiledPattern{re: re}, nil
}

// caseInsensitive resolves case_mode against the literal pattern text:
// Smart behaves as Insensitive iff the pattern has no uppercase letter.
func caseInsensitive(opts SearchOptions) bool {
	switch opts.CaseMode {
	case CaseInsensitive:
		return true
	case CaseSmart:
		return opts.Pattern == strings.ToLower(opts.Pattern)
	default:
		return false
	}
}

// searchFileContent runs the compiled pattern over one file line by line,
// also when multiline is set (that option only adds the "s" flag, so a
// match never spans a line break), applying invert_match, context lines, only_matching, and
// maxCount. maxCount <= 0 means unlimited. binaryMode decides whether a
// binary file is skipped, searched-but-suppressed, or searched as text.
func searchFileContent(path string, cp *compiledPattern, opts SearchOptions, maxCount int) ([]contentMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	isBinary := discovery.IsBinaryData(data)
	if isBinary && opts.BinaryMode == BinaryAuto {
		return nil, nil
	}

	suppress := isBinary && opts.BinaryMode == BinarySearchSuppress

	lines := splitLines(data)

	before, after := contextWindows(opts)

	var matches []contentMatch
	matchedLines := make(map[int]bool)

	emit := func(lineIdx int, matchText string) bool {
		matches = append(matches, contentMatch{
			Line:             lineIdx + 1,
			LineText:         displayLine(lines[lineIdx], suppress),
			MatchText:        displayLine(matchText, suppress),
			IsBinary:         isBinary,
			BinarySuppressed: suppress,
		})
		matchedLines[lineIdx] = true
		return maxCount > 0 && len(matches) >= maxCount
	}

	for i, line := range lines {
		loc := cp.re.FindStringIndex(line)
		isMatch := loc != nil
		if opts.InvertMatch {
			isMatch = !isMatch
		}
		if !isMatch {
			continue
		}

		matchText := line
		if !opts.InvertMatch && opts.OnlyMatching && loc != nil {
			matchText = line[loc[0]:loc[1]]
		}

		if emit(i, matchText) {
			break
		}
	}

	if before == 0 && after == 0 || len(matches) == 0 {
		return matches, nil
	}

	return withContextLines(matches, lines, matchedLines, before, after, suppress), nil
}

// contextWindows resolves context/before_context/after_context per §4.4:
// context sets both directions; before_context/after_context each override
// one direction when present.
func contextWindows(opts SearchOptions) (before, after int) {
	if opts.Context != nil {
		before, after = *opts.Context, *opts.Context
	}
	if opts.BeforeContext != nil {
		before = *opts.BeforeContext
	}
	if opts.AfterContext != nil {
		after = *opts.AfterContext
	}
	return before, after
}

// withContextLines expands matches with is_context records for the
// requested number of surrounding lines, deduplicating against lines that
// are themselves matches and against each other, and keeping output in
// ascending line order.
func withContextLines(matches []contentMatch, lines []string, matchedLines map[int]bool, before, after int, suppress bool) []contentMatch {
	included := make(map[int]bool, len(matchedLines))
	for ln := range matchedLines {
		included[ln] = true
	}

	var extra []contentMatch
	for ln := range matchedLines {
		for d := 1; d <= before; d++ {
			idx := ln - d
			if idx < 0 || included[idx] {
				continue
			}
			included[idx] = true
			extra = append(extra, contentMatch{Line: idx + 1, LineText: displayLine(lines[idx], suppress), IsContext: true})
		}
		for d := 1; d <= after; d++ {
			idx := ln + d
			if idx >= len(lines) || included[idx] {
				continue
			}
			included[idx] = true
			extra = append(extra, contentMatch{Line: idx + 1, LineText: displayLine(lines[idx], suppress), IsContext: true})
		}
	}

	all := append(matches, extra...)
	// Stable ascending order by line number, matches/context interleaved as
	// they would appear in the file.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j-1].Line > all[j].Line; j-- {
			all[j-1], all[j] = all[j], all[j-1]
		}
	}
	return all
}

func displayLine(s string, suppress bool) string {
	if suppress {
		return suppressionMarker
	}
	return s
}

// splitLines splits file content into lines without the trailing newline,
// tolerating a missing final newline and both LF and CRLF endings.
func splitLines(data []byte) []string {
	text := string(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
