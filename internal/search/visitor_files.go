package search

import "github.com/fssearchd/fssearchd/internal/discovery"

// runFilesMode drives FilesMode (list_files_only): every candidate the
// walker already filtered down to regular files is reserved and emitted
// with metadata, no pattern work at all. Grounded on files_mode/visitor.rs's
// FilesListerVisitor, which is the simplest of the three visitors for the
// same reason.
func runFilesMode(session *Session, candidates []discovery.Candidate, concurrency, bufferSize int) {
	parallelWalk(session, candidates, concurrency, bufferSize, func(buf *ResultBuffer, c discovery.Candidate) (quit bool) {
		if !session.ReserveMatch() {
			return true
		}

		modified, accessed, created := fileTimes(c.AbsPath)
		buf.Add(SearchResult{
			File:     c.Path,
			Kind:     KindFileList,
			Modified: modified,
			Accessed: accessed,
			Created:  created,
		})
		return false
	})
}
