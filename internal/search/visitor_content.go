package search

import (
	"github.com/fssearchd/fssearchd/internal/discovery"
)

// contentMaxCount resolves the engine's per-file max_count per spec.md
// §4.4: Paths mode only needs the first match per file, so the engine is
// told to stop after one hit there; every other mode gets the user's
// max_results (0 meaning unlimited).
func contentMaxCount(session *Session, opts SearchOptions) int {
	if session.OutputMode == OutputPaths {
		return 1
	}
	if opts.MaxResults != nil {
		return *opts.MaxResults
	}
	return 0
}

// runContentMode drives ContentMatch: for each candidate it runs the
// compiled pattern over the file's lines and folds each hit into the
// session according to output_mode, exactly mirroring
// content_search/visitor_impl.rs's mode-first branching (Matches/Paths/
// Counts each have a distinct reservation strategy, §4.3).
func runContentMode(session *Session, candidates []discovery.Candidate, opts SearchOptions, concurrency, bufferSize int) error {
	cp, err := compilePattern(opts)
	if err != nil {
		return err
	}

	maxCount := contentMaxCount(session, opts)

	parallelWalk(session, candidates, concurrency, bufferSize, func(buf *ResultBuffer, c discovery.Candidate) (quit bool) {
		matches, searchErr := searchFileContent(c.AbsPath, cp, opts, maxCount)
		if searchErr != nil {
			session.RecordError(c.Path, searchErr.Error(), CategorizeError(searchErr))
			return false
		}
		if len(matches) == 0 {
			return false
		}

		modified, accessed, created := fileTimes(c.AbsPath)

		recordCount := 0
		for _, m := range matches {
			if recordCount%IntraFileCancelCheckInterval == 0 && session.IsCancelled() {
				buf.Flush()
				return true
			}
			recordCount++

			switch session.OutputMode {
			case OutputPaths:
				if m.IsContext {
					continue
				}
				inserted, alreadySeen := session.RecordFileSeen(c.Path, session.ReserveMatch)
				if alreadySeen {
					continue
				}
				if !inserted {
					return true
				}
				buf.Add(SearchResult{
					File:     c.Path,
					Kind:     KindFile,
					Modified: modified,
					Accessed: accessed,
					Created:  created,
				})

			case OutputCounts:
				data := &FileCountData{Count: 1, Modified: modified, Accessed: accessed, Created: created}
				if !session.RecordFileCount(c.Path, data, session.ReserveFile) {
					return true
				}

			default: // OutputMatches
				if !session.ReserveMatch() {
					return true
				}
				lineNo := m.Line
				matchText := m.MatchText
				buf.Add(SearchResult{
					File:             c.Path,
					Line:             &lineNo,
					MatchText:        &matchText,
					Kind:             KindContent,
					IsContext:        m.IsContext,
					IsBinary:         boolPtrIf(m.IsBinary),
					BinarySuppressed: boolPtrIf(m.BinarySuppressed),
					Modified:         modified,
					Accessed:         accessed,
					Created:          created,
				})
			}
		}
		return false
	})

	return nil
}

func boolPtrIf(v bool) *bool {
	if !v {
		return nil
	}
	return &v
}
