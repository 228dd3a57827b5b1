// Package audit keeps an append-only in-memory record of administrative and
// business actions, newest first. Entries are immutable once appended and the
// log grows for the lifetime of the process.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"amdesk/internal/platform/metrics"
)

// DefaultListLimit caps List when callers pass a non-positive limit.
const DefaultListLimit = 200

// Entry is one audit record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
}

// Log is the in-memory audit store. Ids come from a monotonic counter rather
// than list length so they stay collision-free if eviction is ever added.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	seq     int64
	metrics *metrics.Metrics
}

// NewLog creates a log seeded with a boot entry. metrics may be nil.
func NewLog(m *metrics.Metrics) *Log {
	l := &Log{seq: 1000, metrics: m}
	l.Append(context.Background(), "system", "boot", "Server started")
	return l
}

// Append records an action at the head of the log and returns the entry.
func (l *Log) Append(_ context.Context, actor, action, detail string) Entry {
	if actor == "" {
		actor = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	entry := Entry{
		ID:        fmt.Sprintf("A-%d", l.seq),
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Action:    action,
		Detail:    detail,
	}
	l.entries = append([]Entry{entry}, l.entries...)
	if l.metrics != nil {
		l.metrics.AuditEntries.Inc()
	}
	return entry
}

// List returns the most recent limit entries, newest first.
func (l *Log) List(_ context.Context, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit > len(l.entries) {
		limit = len(l.entries)
	}
	return append([]Entry{}, l.entries[:limit]...)
}
