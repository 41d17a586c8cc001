package repositories

import (
	"sync"
	"time"
)

// keyHistory is the chronological event log of one key.
// mu is held by the evaluator across its whole check-and-record sequence.
type keyHistory struct {
	mu      sync.Mutex
	events  []time.Time
	removed bool
}

// LoginHistoryRepository keeps the admitted-attempt history of every key of one dimension
type LoginHistoryRepository struct {
	mu       sync.Mutex
	entries  map[string]*keyHistory
	capacity int
}

// NewLoginHistoryRepository creates a repository that retains at most capacity events per key.
// capacity should be the largest limit among the dimension's policies; zero or less keeps everything.
func NewLoginHistoryRepository(capacity int) *LoginHistoryRepository {
	return &LoginHistoryRepository{
		entries:  make(map[string]*keyHistory),
		capacity: capacity,
	}
}

// HistoryHandle is exclusive access to one key's history until Release is called
type HistoryHandle struct {
	repo  *LoginHistoryRepository
	key   string
	entry *keyHistory
}

// Acquire locks the history of key, creating it if absent
func (r *LoginHistoryRepository) Acquire(key string) *HistoryHandle {
	for {
		r.mu.Lock()
		entry, ok := r.entries[key]
		if !ok {
			entry = &keyHistory{}
			r.entries[key] = entry
		}
		r.mu.Unlock()

		entry.mu.Lock()
		if entry.removed {
			// Swept between lookup and lock; retry with a fresh entry
			entry.mu.Unlock()
			continue
		}
		return &HistoryHandle{repo: r, key: key, entry: entry}
	}
}

// History returns the held key's events, oldest first. The slice must not be modified.
func (h *HistoryHandle) History() []time.Time {
	return h.entry.events
}

// Record appends an event at the given time
func (h *HistoryHandle) Record(at time.Time) {
	h.repo.appendLocked(h.entry, at)
}

// Release unlocks the held key. A key that is still empty is dropped so that
// rejected attempts leave nothing behind.
func (h *HistoryHandle) Release() {
	if len(h.entry.events) == 0 {
		h.repo.mu.Lock()
		if h.repo.entries[h.key] == h.entry {
			delete(h.repo.entries, h.key)
		}
		h.entry.removed = true
		h.repo.mu.Unlock()
	}
	h.entry.mu.Unlock()
}

// RecordEvent appends an event for key at the given time
func (r *LoginHistoryRepository) RecordEvent(key string, at time.Time) {
	h := r.Acquire(key)
	defer h.Release()
	h.Record(at)
}

// GetHistory returns a copy of key's events, oldest first, or nil if the key is unknown
func (r *LoginHistoryRepository) GetHistory(key string) []time.Time {
	r.mu.Lock()
	entry, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.removed || len(entry.events) == 0 {
		return nil
	}
	out := make([]time.Time, len(entry.events))
	copy(out, entry.events)
	return out
}

// Sweep removes keys whose newest event is at least retention old and returns how many were removed.
// Keys held by an in-flight evaluation are left for the next sweep.
func (r *LoginHistoryRepository) Sweep(now time.Time, retention time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, entry := range r.entries {
		if !entry.mu.TryLock() {
			continue
		}
		n := len(entry.events)
		if n == 0 || now.Sub(entry.events[n-1]) >= retention {
			entry.removed = true
			delete(r.entries, key)
			removed++
		}
		entry.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked keys
func (r *LoginHistoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// appendLocked keeps events non-decreasing and drops the oldest ones beyond capacity.
// The caller must hold entry.mu.
func (r *LoginHistoryRepository) appendLocked(entry *keyHistory, at time.Time) {
	if n := len(entry.events); n > 0 && at.Before(entry.events[n-1]) {
		at = entry.events[n-1]
	}
	entry.events = append(entry.events, at)

	if r.capacity > 0 && len(entry.events) > r.capacity {
		overflow := len(entry.events) - r.capacity
		kept := make([]time.Time, r.capacity, r.capacity+1)
		copy(kept, entry.events[overflow:])
		entry.events = kept
	}
}
