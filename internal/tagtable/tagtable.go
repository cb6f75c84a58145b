// Package tagtable implements the per-connection table of in-flight
// requests, keyed by the client's tag, along with the FLUSH
// wait-list bookkeeping needed to implement TFLUSH correctly: a
// FLUSH of a tag that is itself the target of other pending FLUSHes
// must not complete any of them until the original request finishes.
//
// The design mirrors diod's own Npreq.flushreq chained list: each
// in-flight request tracks the list of FLUSH requests waiting on it,
// and completing a request walks that list to release every waiter.
package tagtable

import "sync"

// Entry is a single in-flight request tracked by tag.
type Entry struct {
	Tag uint16

	// Cancel aborts the goroutine processing this request. It is
	// called once, by the first FLUSH that targets this tag.
	Cancel func()

	mu        sync.Mutex
	done      bool
	cancelled bool
	waiters   []chan struct{}
}

// Cancelled reports whether a FLUSH has targeted this entry. Once
// true, the request's own response must be suppressed — only RFLUSH
// answers it.
func (e *Entry) Cancelled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelled
}

// markCancelled flags the entry as cancelled and reports whether this
// call was the first to do so.
func (e *Entry) markCancelled() bool {
	e.mu.Lock()
	first := !e.cancelled
	e.cancelled = true
	e.mu.Unlock()
	return first
}

// addWaiter registers ch to be closed when the entry completes. If
// the entry has already completed, addWaiter closes ch immediately
// and returns false.
func (e *Entry) addWaiter(ch chan struct{}) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		close(ch)
		return false
	}
	e.waiters = append(e.waiters, ch)
	return true
}

// complete marks the entry done and releases every FLUSH waiting on
// it. It must be called exactly once, when the request's response
// has been written (or suppressed).
func (e *Entry) complete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return
	}
	e.done = true
	for _, ch := range e.waiters {
		close(ch)
	}
	e.waiters = nil
}

// Table is a per-connection tag table.
type Table struct {
	mu      sync.Mutex
	entries map[uint16]*Entry
}

// New returns an empty Table.
func New() *Table {
	return &Table{entries: make(map[uint16]*Entry)}
}

// Start registers a new in-flight request under tag. It reports
// false, without registering anything, if tag is already in use —
// the wire protocol requires tags to be unique among pending
// requests.
func (t *Table) Start(tag uint16, cancel func()) (*Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[tag]; ok {
		return nil, false
	}
	e := &Entry{Tag: tag, Cancel: cancel}
	t.entries[tag] = e
	return e, true
}

// Finish removes tag from the table and releases any FLUSH requests
// waiting on it. Call this once the response for tag has been
// written to the connection.
func (t *Table) Finish(tag uint16) {
	t.mu.Lock()
	e, ok := t.entries[tag]
	if ok {
		delete(t.entries, tag)
	}
	t.mu.Unlock()
	if ok {
		e.complete()
	}
}

// Flush processes a TFLUSH for oldtag. If oldtag denotes a request
// that is still in flight, Flush invokes its Cancel function (if
// any) and blocks until that request completes, then returns. If
// oldtag is not in flight (it already completed, or never existed),
// Flush returns immediately — per spec, a FLUSH of an unknown tag is
// not an error.
func (t *Table) Flush(oldtag uint16) {
	t.mu.Lock()
	e, ok := t.entries[oldtag]
	t.mu.Unlock()
	if !ok {
		return
	}
	if e.markCancelled() && e.Cancel != nil {
		e.Cancel()
	}
	ch := make(chan struct{})
	if e.addWaiter(ch) {
		<-ch
	}
}

// Cancelled reports whether tag's in-flight request has been targeted
// by a FLUSH and should have its response suppressed. It reports
// false once tag is no longer in the table, including after it has
// already finished normally.
func (t *Table) Cancelled(tag uint16) bool {
	t.mu.Lock()
	e, ok := t.entries[tag]
	t.mu.Unlock()
	if !ok {
		return false
	}
	return e.Cancelled()
}

// Len reports how many requests are currently in flight.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
