package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is the long-lived per-search record shared between the walk
// worker and every RPC-facing operation (StartFlow/ReadFlow/StopFlow/
// ListFlow). All fields beyond the immutable header are protected either by
// their own lock or by an atomic, matching the guidance in the design notes:
// locks guard vectors/maps, atomics guard counters and flags.
type Session struct {
	ID string

	// Options captures just the fields later operations and ListFlow need
	// to summarize the session; the rest of the SearchOptions only matters
	// to the worker that already consumed them while building its walk.
	SearchType          SearchType
	Pattern              string
	TimeoutMs            *int
	Fingerprint          uint64
	EffectiveMaxResults  int
	OutputMode           OutputMode

	StartTime time.Time

	resultsMu sync.RWMutex
	results   []SearchResult

	totalMatches ReservationCounter
	totalFiles   ReservationCounter

	errorStore *errorStore

	seenFilesMu sync.Mutex
	seenFiles   map[string]struct{}

	fileCountsMu sync.Mutex
	fileCounts   map[string]*FileCountData
	fileCountsOrder []string

	isComplete atomic.Bool
	isError    atomic.Bool

	errorMu sync.RWMutex
	errorMsg string

	wasIncomplete atomic.Bool

	// lastReadMicros is microseconds elapsed since StartTime at which a
	// client last paged results, refreshed also by throttled in-walk
	// progress updates so a fast-producing, never-yet-read session is not
	// mistaken for idle by the retention sweep.
	lastReadMicros atomic.Int64

	// matchesSinceTouch and lastTouchMicros back MaybeTouchLastRead's
	// throttle; best-effort under concurrent writers (a race just means an
	// occasional extra store), since the throttle is a write-rate limit, not
	// a correctness invariant.
	matchesSinceTouch atomic.Uint64
	lastTouchMicros   atomic.Int64

	touchThrottleMicros  int64
	touchThrottleMatches uint64

	cancelOnce sync.Once
	cancelCh   chan struct{}

	firstResultOnce sync.Once
	firstResultCh   chan struct{}

	doneOnce sync.Once
	doneCh   chan struct{}

	completeOnce sync.Once
}

// SessionLimits carries the resolved-config values NewSession needs beyond
// the client-supplied SearchOptions: how many detailed errors to retain, and
// the last-read-marker throttle (ms and match count, whichever trips
// first). Zero values fall back to spec.md §5's built-in defaults.
type SessionLimits struct {
	MaxDetailedErrors       int
	TouchThrottleMs         int
	TouchThrottleMatches    int
}

// NewSession allocates a Session with a freshly generated identifier. The
// caller is responsible for inserting it into a Registry.
func NewSession(opts SearchOptions, effectiveMaxResults int, limits SessionLimits) *Session {
	maxDetailedErrors := limits.MaxDetailedErrors
	if maxDetailedErrors <= 0 {
		maxDetailedErrors = DefaultMaxDetailedErrors
	}
	touchThrottleMs := limits.TouchThrottleMs
	if touchThrottleMs <= 0 {
		touchThrottleMs = DefaultTouchThrottleMs
	}
	touchThrottleMatches := limits.TouchThrottleMatches
	if touchThrottleMatches <= 0 {
		touchThrottleMatches = DefaultTouchThrottleMatches
	}

	s := &Session{
		ID:                  uuid.NewString(),
		SearchType:          opts.SearchType,
		Pattern:             opts.Pattern,
		TimeoutMs:           opts.TimeoutMs,
		Fingerprint:         Fingerprint(opts),
		EffectiveMaxResults: effectiveMaxResults,
		OutputMode:          opts.OutputMode,
		StartTime:           time.Now(),
		errorStore:          newErrorStore(maxDetailedErrors),
		seenFiles:           make(map[string]struct{}),
		fileCounts:          make(map[string]*FileCountData),
		cancelCh:            make(chan struct{}),
		firstResultCh:       make(chan struct{}),
		doneCh:              make(chan struct{}),
	}
	s.touchThrottleMicros = int64(touchThrottleMs) * 1000
	s.touchThrottleMatches = uint64(touchThrottleMatches)
	return s
}

// Cancel requests termination of the session's walk. It is idempotent and
// safe to call from any goroutine, including StopFlow and a timeout timer
// racing each other.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() {
		close(s.cancelCh)
	})
}

// IsCancelled reports whether Cancel has been called, without blocking.
func (s *Session) IsCancelled() bool {
	select {
	case <-s.cancelCh:
		return true
	default:
		return false
	}
}

// walkContext returns a context.Context that is cancelled exactly when
// Cancel is called, so the discovery walker (which is context-driven) stops
// promptly without the Session needing to know anything about contexts
// itself. The watcher goroutine exits as soon as either side fires.
func (s *Session) walkContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-s.cancelCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}

// NotifyFirstResult flips the first-result latch exactly once. Called by
// ResultBuffer.Flush the first time the shared results vector becomes
// non-empty.
func (s *Session) NotifyFirstResult() {
	s.firstResultOnce.Do(func() {
		close(s.firstResultCh)
	})
}

// WaitFirstResult blocks until NotifyFirstResult fires, the session
// completes, or timeout elapses, whichever comes first.
func (s *Session) WaitFirstResult(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.firstResultCh:
	case <-s.doneCh:
	case <-timer.C:
	}
}

// WaitComplete blocks until the worker finishes, used by the sort_by path
// which disables the fast-return behaviour entirely.
func (s *Session) WaitComplete() {
	<-s.doneCh
}

// doneChannel exposes the completion latch for select statements that need
// to race it against something else (the registry's timeout timer), where
// the blocking WaitComplete is not a good fit.
func (s *Session) doneChannel() <-chan struct{} {
	return s.doneCh
}

// MarkComplete flips is_complete false→true exactly once, the worker's
// terminal action, and releases anyone blocked in WaitComplete/
// WaitFirstResult.
func (s *Session) MarkComplete() {
	s.completeOnce.Do(func() {
		s.isComplete.Store(true)
		s.doneOnce.Do(func() {
			close(s.doneCh)
		})
	})
}

// IsComplete reports whether the worker has terminated.
func (s *Session) IsComplete() bool {
	return s.isComplete.Load()
}

// MarkWasIncomplete records that the session ended via cancellation or
// timeout rather than natural exhaustion of the walk.
func (s *Session) MarkWasIncomplete() {
	s.wasIncomplete.Store(true)
}

// WasIncomplete reports whether the session ended early.
func (s *Session) WasIncomplete() bool {
	return s.wasIncomplete.Load()
}

// SetError records a fatal per-session error. The walk never runs (or is
// abandoned) once this is called.
func (s *Session) SetError(msg string) {
	s.errorMu.Lock()
	s.errorMsg = msg
	s.errorMu.Unlock()
	s.isError.Store(true)
}

// IsError reports whether a fatal error was recorded.
func (s *Session) IsError() bool {
	return s.isError.Load()
}

// ErrorMessage returns the recorded fatal error message, if any.
func (s *Session) ErrorMessage() string {
	s.errorMu.RLock()
	defer s.errorMu.RUnlock()
	return s.errorMsg
}

// RuntimeMs returns elapsed wall-clock time since the session started.
func (s *Session) RuntimeMs() int64 {
	return time.Since(s.StartTime).Milliseconds()
}

// TouchLastRead refreshes the last-read marker to "now", used both by an
// explicit client read and by throttled in-walk progress updates.
func (s *Session) TouchLastRead() {
	s.lastReadMicros.Store(time.Since(s.StartTime).Microseconds())
}

// MaybeTouchLastRead refreshes the last-read marker from within a walk
// visitor, throttled to at most once per 100 ms or once per 50 matches
// (whichever comes first) per spec.md §4.3's FilenameMatch update rule, so a
// hot loop of matches doesn't hammer the atomic on every single hit.
func (s *Session) MaybeTouchLastRead() {
	n := s.matchesSinceTouch.Add(1)
	nowMicros := time.Since(s.StartTime).Microseconds()
	last := s.lastTouchMicros.Load()
	if n < s.touchThrottleMatches && nowMicros-last < s.touchThrottleMicros {
		return
	}
	s.matchesSinceTouch.Store(0)
	s.lastTouchMicros.Store(nowMicros)
	s.TouchLastRead()
}

// IdleDuration returns how long it has been since the last-read marker was
// refreshed, the input to the retention sweep's eviction policy.
func (s *Session) IdleDuration() time.Duration {
	lastMicros := s.lastReadMicros.Load()
	lastRead := s.StartTime.Add(time.Duration(lastMicros) * time.Microsecond)
	return time.Since(lastRead)
}

// TotalMatches returns the current value of the matches reservation
// counter (total_files, once Counts mode finalises).
func (s *Session) TotalMatches() uint64 {
	return s.totalMatches.Load()
}

// ReserveMatch attempts to reserve one slot against EffectiveMaxResults in
// total_matches.
func (s *Session) ReserveMatch() bool {
	return s.totalMatches.Reserve(uint64(s.EffectiveMaxResults))
}

// ReserveFile attempts to reserve one slot against EffectiveMaxResults in
// total_files (Counts mode).
func (s *Session) ReserveFile() bool {
	return s.totalFiles.Reserve(uint64(s.EffectiveMaxResults))
}

// TotalFiles returns the current value of the files reservation counter.
func (s *Session) TotalFiles() uint64 {
	return s.totalFiles.Load()
}

// AppendResults appends a batch to the shared results vector under its
// write lock, reporting whether the vector was empty beforehand (the
// signal ResultBuffer.Flush uses to fire NotifyFirstResult).
func (s *Session) AppendResults(batch []SearchResult) (wasEmpty bool) {
	s.resultsMu.Lock()
	wasEmpty = len(s.results) == 0
	s.results = append(s.results, batch...)
	s.resultsMu.Unlock()
	return wasEmpty
}

// Snapshot takes a consistent (results-length, total) pair under a single
// read-lock acquisition, per the §4.5 read-lock discipline: the same lock
// window that reads the results length also computes and copies the slice, so a
// client can never observe total < len(returned).
func (s *Session) Snapshot(offset, length int) (slice []SearchResult, total int) {
	s.resultsMu.RLock()
	defer s.resultsMu.RUnlock()

	n := len(s.results)
	total = n

	var start, end int
	if offset < 0 {
		want := -offset
		if want > n {
			want = n
		}
		start = n - want
		end = n
	} else {
		start = offset
		if start > n {
			start = n
		}
		end = start + length
		if end > n {
			end = n
		}
	}

	slice = make([]SearchResult, end-start)
	copy(slice, s.results[start:end])
	return slice, total
}

// ResultsLen reports the current shared results length under its read
// lock, used by ListFlow's TotalResults.
func (s *Session) ResultsLen() int {
	s.resultsMu.RLock()
	defer s.resultsMu.RUnlock()
	return len(s.results)
}

// ReplaceResults swaps the shared results vector wholesale, used by Counts
// finalisation and by sort-in-place.
func (s *Session) ReplaceResults(results []SearchResult) {
	s.resultsMu.Lock()
	s.results = results
	s.resultsMu.Unlock()
}

// SortResults reorders the shared results vector in place under its write
// lock by the given key and direction.
func (s *Session) SortResults(by SortBy, dir SortDirection) {
	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()
	sortResults(s.results, by, dir)
}

// RecordFileSeen checks, reserves, then inserts path into the Paths-mode
// seen_files set. alreadySeen reports a path this session has already
// recorded (the caller should skip it, not stop). inserted reports
// whether path was newly added; when a new path's reservation fails,
// inserted is false and alreadySeen is false, telling the caller the
// results cap was hit. seen_files never holds an entry without a
// matching reservation in total_matches.
func (s *Session) RecordFileSeen(path string, reserve func() bool) (inserted, alreadySeen bool) {
	s.seenFilesMu.Lock()
	defer s.seenFilesMu.Unlock()
	if _, ok := s.seenFiles[path]; ok {
		return false, true
	}
	if !reserve() {
		return false, false
	}
	s.seenFiles[path] = struct{}{}
	return true, false
}

// RecordFileCount implements the Counts-mode check-then-insert-or-increment
// rule: if path is new, fn is called to decide whether a reservation
// succeeds before inserting data; if path already has an entry, its count
// is incremented without any reservation.
func (s *Session) RecordFileCount(path string, data *FileCountData, reserve func() bool) (ok bool) {
	s.fileCountsMu.Lock()
	defer s.fileCountsMu.Unlock()

	if existing, found := s.fileCounts[path]; found {
		existing.Count++
		return true
	}

	if !reserve() {
		return false
	}

	s.fileCounts[path] = data
	s.fileCountsOrder = append(s.fileCountsOrder, path)
	return true
}

// FileCountsSnapshot reads the accumulated file_counts map into an ordered
// slice of SearchResult records (Counts-mode finalisation).
func (s *Session) FileCountsSnapshot() []SearchResult {
	s.fileCountsMu.Lock()
	defer s.fileCountsMu.Unlock()

	out := make([]SearchResult, 0, len(s.fileCountsOrder))
	for _, path := range s.fileCountsOrder {
		data := s.fileCounts[path]
		count := data.Count
		out = append(out, SearchResult{
			File:     path,
			Line:     &count,
			Kind:     KindFile,
			Modified: data.Modified,
			Accessed: data.Accessed,
			Created:  data.Created,
		})
	}
	return out
}

// FileCountsLen returns the number of distinct files counted so far.
func (s *Session) FileCountsLen() int {
	s.fileCountsMu.Lock()
	defer s.fileCountsMu.Unlock()
	return len(s.fileCounts)
}

// SeenFilesLen returns the number of distinct files recorded by
// RecordFileSeen so far (Paths mode).
func (s *Session) SeenFilesLen() int {
	s.seenFilesMu.Lock()
	defer s.seenFilesMu.Unlock()
	return len(s.seenFiles)
}

// RecordError appends a non-fatal error to the session's bounded error
// store, always incrementing the counter even past the detail cap.
func (s *Session) RecordError(path, message string, category ErrorCategory) {
	s.errorStore.record(SearchError{Path: path, Message: message, Category: category})
}

// ErrorCount returns the total number of non-fatal errors recorded,
// including those beyond the detail cap.
func (s *Session) ErrorCount() int {
	return s.errorStore.count()
}

// Errors returns a copy of the detailed (capped) error list.
func (s *Session) Errors() []SearchError {
	return s.errorStore.list()
}

// ResultsLimited reports whether the session hit its effective cap.
func (s *Session) ResultsLimited() bool {
	return int(s.TotalMatches()) >= s.EffectiveMaxResults
}
