// Package eightsleep pkg/eightsleep/history.go

package eightsleep

import "sync"

// historySize is the fixed capacity of the rolling snapshot history.
const historySize = 10

// snapshotHistory is a bounded most-recent-first ring of device snapshots.
// Pushes beyond capacity silently evict the oldest entry.
type snapshotHistory struct {
	mu   sync.RWMutex
	ring [historySize]Snapshot
	pos  int // total number of pushes
}

// Push records a snapshot as the newest entry.
func (h *snapshotHistory) Push(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ring[h.pos%historySize] = s
	h.pos++
}

// Latest returns the most recent snapshot, if any.
func (h *snapshotHistory) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.pos == 0 {
		return Snapshot{}, false
	}

	return h.ring[(h.pos-1)%historySize], true
}

// Len returns the number of retained snapshots.
func (h *snapshotHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.pos < historySize {
		return h.pos
	}

	return historySize
}

// All returns the retained snapshots, most recent first.
func (h *snapshotHistory) All() []Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.pos
	if n > historySize {
		n = historySize
	}

	out := make([]Snapshot, n)
	for i := 0; i < n; i++ {
		out[i] = h.ring[(h.pos-1-i+historySize)%historySize]
	}

	return out
}
