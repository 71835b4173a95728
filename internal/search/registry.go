package search

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fssearchd/fssearchd/internal/pipeline"
)

// RegistryConfig carries the resolved ServerConfig values the Registry and
// the sessions it spawns need, decoupling internal/search from
// internal/config so the search package has no import of its own caller.
type RegistryConfig struct {
	DefaultMaxResults       int
	MaxResultsCeiling       int
	FirstResultWaitMs       int
	ResultBufferSize        int
	MaxDetailedErrors       int
	LastReadThrottleMs      int
	LastReadThrottleMatches int
	SweepIntervalSecs       int
	ActiveRetentionSecs     int
	CompletedRetentionSecs  int
	WalkConcurrency         int
}

// Registry is the SessionRegistry from spec.md §2: the map from identifier
// to Session plus the background retention sweep. It is the single entry
// point the MCP tool layer drives (StartFlow/ReadFlow/StopFlow/ListFlow).
type Registry struct {
	cfg RegistryConfig

	mu       sync.RWMutex
	sessions map[string]*Session

	fingerprintsMu sync.Mutex
	fingerprints   map[uint64]int

	logger *slog.Logger

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewRegistry creates a Registry and starts its background sweep goroutine.
// Callers must call Close to stop the sweep when the server shuts down.
func NewRegistry(cfg RegistryConfig) *Registry {
	r := &Registry{
		cfg:          cfg,
		sessions:     make(map[string]*Session),
		fingerprints: make(map[uint64]int),
		logger:       slog.Default().With("component", "search-registry"),
		sweepStop:    make(chan struct{}),
		sweepDone:    make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Close stops the background sweep goroutine and waits for it to exit.
func (r *Registry) Close() {
	close(r.sweepStop)
	<-r.sweepDone
}

// StartFlow implements spec.md §4.6: it clamps max_results, validates the
// root path, allocates a Session, spawns its worker, arms an optional
// timeout, then waits for either sort-finalisation or a bounded first
// result before returning an initial snapshot.
func (r *Registry) StartFlow(opts SearchOptions) (*StartResponse, error) {
	effectiveMaxResults := clampMaxResults(opts.MaxResults, r.cfg.DefaultMaxResults, r.cfg.MaxResultsCeiling)

	root, err := validateRoot(opts.RootPath)
	if err != nil {
		return nil, pipeline.NewError("invalid root path", err)
	}

	session := NewSession(opts, effectiveMaxResults, SessionLimits{
		MaxDetailedErrors:    r.cfg.MaxDetailedErrors,
		TouchThrottleMs:      r.cfg.LastReadThrottleMs,
		TouchThrottleMatches: r.cfg.LastReadThrottleMatches,
	})

	r.insert(session)
	r.logFingerprint(session.Fingerprint, opts.Pattern, opts.RootPath)

	run := RunOptions{
		WalkConcurrency:  r.cfg.WalkConcurrency,
		ResultBufferSize: r.cfg.ResultBufferSize,
	}
	go Execute(session, root, opts, run)

	if opts.TimeoutMs != nil {
		r.armTimeout(session, *opts.TimeoutMs)
	}

	if opts.SortBy != "" {
		session.WaitComplete()
		session.SortResults(opts.SortBy, normalizeSortDirection(opts.SortDirection))
	} else {
		waitMs := r.cfg.FirstResultWaitMs
		if waitMs <= 0 {
			waitMs = 5000
		}
		session.WaitFirstResult(time.Duration(waitMs) * time.Millisecond)
	}

	results, total := session.Snapshot(0, StartFlowPreviewSize)

	return &StartResponse{
		SessionID:      session.ID,
		IsComplete:     session.IsComplete(),
		IsError:        session.IsError(),
		Results:        results,
		TotalResults:   total,
		RuntimeMs:      session.RuntimeMs(),
		ErrorCount:     session.ErrorCount(),
		MaxResults:     effectiveMaxResults,
		ResultsLimited: session.ResultsLimited(),
	}, nil
}

// ReadFlow implements spec.md §4.7's read: a consistent slice-plus-total
// snapshot, a last-read-marker refresh, and the full response shape a
// paging client needs to decide whether to keep reading.
func (r *Registry) ReadFlow(sessionID string, offset, length int) (*ReadResponse, error) {
	session, ok := r.lookup(sessionID)
	if !ok {
		return nil, pipeline.NewNotFoundError(fmt.Sprintf("unknown session %q", sessionID))
	}

	session.TouchLastRead()
	results, total := session.Snapshot(offset, length)

	hasMore := false
	if offset >= 0 {
		hasMore = !session.IsComplete()
		if offset+len(results) < total {
			hasMore = true
		}
	}

	resp := &ReadResponse{
		SessionID:      session.ID,
		Results:        results,
		ReturnedCount:  len(results),
		TotalResults:   total,
		TotalMatches:   int(session.TotalMatches()),
		IsComplete:     session.IsComplete(),
		IsError:        session.IsError(),
		Error:          session.ErrorMessage(),
		HasMoreResults: hasMore,
		RuntimeMs:      session.RuntimeMs(),
		WasIncomplete:  session.WasIncomplete(),
		ErrorCount:     session.ErrorCount(),
		Errors:         session.Errors(),
		ResultsLimited: session.ResultsLimited(),
	}
	return resp, nil
}

// StopFlow implements spec.md §4.7's stop: idempotent cancellation that
// reports false once a session is already complete, matching the "either
// may win" race the spec calls out between cancellation and natural
// completion.
func (r *Registry) StopFlow(sessionID string) (bool, error) {
	session, ok := r.lookup(sessionID)
	if !ok {
		return false, pipeline.NewNotFoundError(fmt.Sprintf("unknown session %q", sessionID))
	}
	if session.IsComplete() {
		return false, nil
	}
	session.Cancel()
	return true, nil
}

// ListFlow implements spec.md §4.7's list: one summary per live session.
func (r *Registry) ListFlow() []SessionSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SessionSummary, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, SessionSummary{
			ID:            session.ID,
			SearchType:    session.SearchType,
			Pattern:       session.Pattern,
			IsComplete:    session.IsComplete(),
			IsError:       session.IsError(),
			RuntimeMs:     session.RuntimeMs(),
			TotalResults:  session.ResultsLen(),
			TimeoutMs:     session.TimeoutMs,
			WasIncomplete: session.WasIncomplete(),
		})
	}
	return out
}

func (r *Registry) lookup(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// insert adds a session to the registry. When FSSEARCHD_DEBUG is set it also asserts
// the freshly generated UUID never collides with a still-live session,
// since a collision would silently merge two unrelated searches.
func (r *Registry) insert(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if os.Getenv("FSSEARCHD_DEBUG") != "" {
		if _, exists := r.sessions[session.ID]; exists {
			panic(fmt.Sprintf("search: session id collision on %q", session.ID))
		}
	}
	r.sessions[session.ID] = session
}

// logFingerprint hashes the search's structural options and logs at debug
// level when an identical search is already in flight. This is purely an
// observability aid; it never refuses or deduplicates the request itself.
func (r *Registry) logFingerprint(fp uint64, pattern, root string) {
	r.fingerprintsMu.Lock()
	count := r.fingerprints[fp]
	r.fingerprints[fp] = count + 1
	r.fingerprintsMu.Unlock()

	if count > 0 {
		r.logger.Debug("duplicate search fingerprint in flight",
			"fingerprint", fmt.Sprintf("%016x", fp),
			"pattern", pattern,
			"root", root,
			"in_flight", count+1,
		)
	}
}

// forgetFingerprint decrements the fingerprint's in-flight counter once its
// session leaves the registry, so the observability counters do not grow
// without bound.
func (r *Registry) forgetFingerprint(fp uint64) {
	r.fingerprintsMu.Lock()
	defer r.fingerprintsMu.Unlock()
	if n := r.fingerprints[fp]; n <= 1 {
		delete(r.fingerprints, fp)
	} else {
		r.fingerprints[fp] = n - 1
	}
}

// armTimeout spawns a fire-and-forget timer that cancels the session and
// marks it incomplete on expiry, a no-op if the session has already
// completed naturally by then (spec.md §5 Timeouts).
func (r *Registry) armTimeout(session *Session, timeoutMs int) {
	if timeoutMs <= 0 {
		session.Cancel()
		session.MarkWasIncomplete()
		return
	}
	go func() {
		timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-timer.C:
			if session.IsComplete() {
				return
			}
			session.MarkWasIncomplete()
			session.Cancel()
		case <-session.doneChannel():
		}
	}()
}

// sweepLoop runs the retention sweep described in spec.md §5 on
// SweepIntervalSecs, evicting sessions whose last-read marker has aged past
// their completion state's retention window.
func (r *Registry) sweepLoop() {
	defer close(r.sweepDone)

	interval := time.Duration(r.cfg.SweepIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.sweepStop:
			return
		case <-ticker.C:
			r.sweepOnce()
		}
	}
}

func (r *Registry) sweepOnce() {
	activeRetention := time.Duration(r.cfg.ActiveRetentionSecs) * time.Second
	if activeRetention <= 0 {
		activeRetention = 5 * time.Minute
	}
	completedRetention := time.Duration(r.cfg.CompletedRetentionSecs) * time.Second
	if completedRetention <= 0 {
		completedRetention = 30 * time.Second
	}

	var evicted []*Session

	r.mu.Lock()
	for id, session := range r.sessions {
		retention := activeRetention
		if session.IsComplete() {
			retention = completedRetention
		}
		if session.IdleDuration() >= retention {
			delete(r.sessions, id)
			evicted = append(evicted, session)
		}
	}
	r.mu.Unlock()

	for _, session := range evicted {
		r.forgetFingerprint(session.Fingerprint)
	}

	if len(evicted) > 0 {
		r.logger.Debug("retention sweep evicted sessions", "count", len(evicted))
	}
}

// clampMaxResults implements spec.md §4.6 step 1: absent means default;
// present is capped at ceiling.
func clampMaxResults(requested *int, defaultMax, ceiling int) int {
	if requested == nil {
		return defaultMax
	}
	if *requested <= 0 {
		return defaultMax
	}
	if *requested > ceiling {
		return ceiling
	}
	return *requested
}

func normalizeSortDirection(dir SortDirection) SortDirection {
	if dir == "" {
		return SortAscending
	}
	return dir
}
