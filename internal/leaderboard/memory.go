package leaderboard

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory keeps entries in process memory. Data is lost on restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[int64]Entry
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[int64]Entry), now: time.Now}
}

func (m *Memory) Add(_ context.Context, entry Entry) (bool, error) {
	entry = prepare(entry, m.now)

	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.entries[entry.UserID]; ok && !better(entry, current) {
		return false, nil
	}
	m.entries[entry.UserID] = entry
	return true, nil
}

func (m *Memory) Top(_ context.Context, limit int) ([]Entry, error) {
	sorted := m.sorted()
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (m *Memory) Position(_ context.Context, userID int64) (int, *Entry, error) {
	for i, entry := range m.sorted() {
		if entry.UserID == userID {
			return i + 1, &entry, nil
		}
	}
	return -1, nil, nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) sorted() []Entry {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	m.mu.RUnlock()
	slices.SortFunc(out, compareEntries)
	return out
}
