package search

// ResultBuffer is a thread-local (in Go terms, goroutine-local) accumulation
// of result records for one walk worker. It exists so that a worker does not
// take the shared results lock on every single match: records pile up
// locally and are flushed to the session's shared vector in one batch, once
// capacity is reached or the worker is about to stop producing results.
//
// The only way this design loses results is a worker that returns without
// flushing a non-empty buffer — every call site that can return early
// (cancellation, reservation failure, walk completion, a panic recovery)
// MUST flush first. Visitors enforce this with `defer buf.Flush()` installed
// before any other early-return path can fire.
type ResultBuffer struct {
	session  *Session
	capacity int
	records  []SearchResult
}

// NewResultBuffer allocates a buffer with the given capacity bound to
// session. A capacity of 0 falls back to DefaultResultBufferCapacity.
func NewResultBuffer(session *Session, capacity int) *ResultBuffer {
	if capacity <= 0 {
		capacity = DefaultResultBufferCapacity
	}
	return &ResultBuffer{
		session:  session,
		capacity: capacity,
		records:  make([]SearchResult, 0, capacity),
	}
}

// Add appends one result to the local buffer, flushing immediately if this
// push reaches capacity.
func (b *ResultBuffer) Add(result SearchResult) {
	b.records = append(b.records, result)
	if len(b.records) >= b.capacity {
		b.Flush()
	}
}

// Flush appends the entire local buffer to the session's shared results
// vector under one lock acquisition, and fires the first-result notifier if
// the shared vector was empty beforehand. A no-op on an empty buffer so
// `defer buf.Flush()` is always safe to install unconditionally.
func (b *ResultBuffer) Flush() {
	if len(b.records) == 0 {
		return
	}
	wasEmpty := b.session.AppendResults(b.records)
	if wasEmpty {
		b.session.NotifyFirstResult()
	}
	b.records = b.records[:0]
}

// Len reports how many records are currently buffered locally (not yet
// visible in the session's shared results).
func (b *ResultBuffer) Len() int {
	return len(b.records)
}
