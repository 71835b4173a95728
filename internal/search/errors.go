package search

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// errorStore holds up to maxDetailed SearchError entries with full detail;
// beyond that, entries are counted but not retained, per §5's "Detailed
// errors stored = 100 (excess counted only)" cap.
type errorStore struct {
	maxDetailed int

	mu      sync.Mutex
	entries []SearchError

	total atomic.Int64
}

func newErrorStore(maxDetailed int) *errorStore {
	return &errorStore{maxDetailed: maxDetailed}
}

func (e *errorStore) record(err SearchError) {
	e.total.Add(1)

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.entries) < e.maxDetailed {
		e.entries = append(e.entries, err)
	}
}

func (e *errorStore) count() int {
	return int(e.total.Load())
}

func (e *errorStore) list() []SearchError {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SearchError, len(e.entries))
	copy(out, e.entries)
	return out
}

// CategorizeError maps a filesystem error encountered during a walk or a
// per-file search into one of the five §3 error categories. Permission and
// not-exist/invalid-path failures are distinguished via errors.Is against
// the stdlib sentinels; anything else is folded into io_error.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	if errors.Is(err, os.ErrPermission) {
		return CategoryPermissionDenied
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
		return CategoryInvalidPath
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		msg := strings.ToLower(pathErr.Err.Error())
		switch {
		case strings.Contains(msg, "permission denied"):
			return CategoryPermissionDenied
		case strings.Contains(msg, "no such file"), strings.Contains(msg, "invalid argument"):
			return CategoryInvalidPath
		}
		return CategoryIOError
	}

	return CategoryIOError
}
