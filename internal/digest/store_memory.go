package digest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"amdesk/pkg/platform/sentinel"
)

// DefaultListLimit caps List when callers pass a non-positive limit.
const DefaultListLimit = 20

// Store persists digests. Write assigns the next "D-<seq>" id; Get returns
// sentinel.ErrNotFound on miss.
type Store interface {
	Write(ctx context.Context, n New) (Digest, error)
	List(ctx context.Context, to string, limit int) ([]Digest, error)
	Get(ctx context.Context, id string) (Digest, error)
}

// InMemoryStore keeps digests head-first behind a mutex, sequence separate
// from length.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Digest
	seq     int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seq: 1000}
}

func (s *InMemoryStore) Write(_ context.Context, n New) (Digest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	rec := Digest{
		ID:        fmt.Sprintf("D-%d", s.seq),
		To:        strings.ToLower(n.To),
		Timestamp: time.Now().UTC(),
		Subject:   n.Subject,
		BodyHTML:  n.BodyHTML,
		Items:     n.Items,
	}
	s.records = append([]Digest{rec}, s.records...)
	return rec, nil
}

// List returns digests newest first, filtered by recipient when to is
// non-empty.
func (s *InMemoryStore) List(_ context.Context, to string, limit int) ([]Digest, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	target := strings.ToLower(to)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Digest, 0, limit)
	for _, rec := range s.records {
		if target != "" && rec.To != target {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Digest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Digest{}, sentinel.ErrNotFound
}
