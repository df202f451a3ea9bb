// Package session holds the back history of a browsing session. History is
// address-only and lives in memory for the life of the process.
package session

// DefaultMaxDepth bounds the history when no other limit is given.
const DefaultMaxDepth = 50

// Entry is a previously visited address.
type Entry struct {
	Host     string
	Selector string
	Port     int
}

// History is a bounded LIFO of entries. Pushing past the bound drops the
// oldest entry.
type History struct {
	entries []Entry
	max     int
}

// NewHistory creates a history holding at most max entries. max <= 0 uses
// DefaultMaxDepth.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	return &History{max: max}
}

// Push records e as the most recent entry.
func (h *History) Push(e Entry) {
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

// Pop removes and returns the most recent entry.
func (h *History) Pop() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	last := len(h.entries) - 1
	e := h.entries[last]
	h.entries = h.entries[:last]
	return e, true
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Max returns the bound.
func (h *History) Max() int {
	return h.max
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
