// Package eventlog keeps a fixed-capacity, in-memory log of upload events.
package eventlog

import (
	"iter"
	"time"
)

// Capacity is the default number of entries kept.
const Capacity = 8

// Log is a fixed-capacity ring of entries. Once full, each write overwrites
// the oldest entry.
// Not safe for concurrent use; callers must synchronize.
type Log struct {
	buf    []Entry
	cursor int // next write position
	count  int
	now    func() time.Time
}

// New creates a Log holding up to capacity entries, stamped with now.
// A non-positive capacity selects Capacity.
func New(capacity int, now func() time.Time) *Log {
	if capacity <= 0 {
		capacity = Capacity
	}
	if now == nil {
		now = time.Now
	}
	return &Log{
		buf: make([]Entry, capacity),
		now: now,
	}
}

// Record appends an entry of the given type stamped with the current time.
func (l *Log) Record(t EventType) Entry {
	e := Entry{Time: l.now().Unix(), Type: t}
	l.buf[l.cursor] = e
	l.cursor = (l.cursor + 1) % len(l.buf)
	if l.count < len(l.buf) {
		l.count++
	}
	return e
}

// Recent yields entries most recent first. Each call starts over from the
// current buffer state.
func (l *Log) Recent() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		n := len(l.buf)
		// Most recent entry is just behind the cursor
		idx := (l.cursor - 1 + n) % n
		for i := 0; i < l.count; i++ {
			if !yield(l.buf[idx]) {
				return
			}
			idx = (idx - 1 + n) % n
		}
	}
}

// Entries returns a copy of the entries, most recent first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, 0, l.count)
	for e := range l.Recent() {
		out = append(out, e)
	}
	return out
}

// Len returns the number of entries currently held.
func (l *Log) Len() int {
	return l.count
}

// Cap returns the fixed capacity.
func (l *Log) Cap() int {
	return len(l.buf)
}
