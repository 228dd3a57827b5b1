package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// seqBase keeps display ids in the N-1001+ range.
const seqBase = 1000

// InMemoryStore keeps notifications in a head-first slice guarded by a mutex.
// This is the default backend and the reference for the Store contract.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Notification
	seq     int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seq: seqBase}
}

func (s *InMemoryStore) Add(_ context.Context, n New) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	rec := Notification{
		ID:        fmt.Sprintf("N-%d", s.seq),
		Seq:       s.seq,
		To:        strings.ToLower(n.To),
		Type:      n.Type,
		Title:     clip(n.Title, MaxTitleLen),
		Body:      clip(n.Body, MaxBodyLen),
		Ref:       n.Ref,
		Timestamp: time.Now().UTC(),
		Read:      false,
	}
	s.records = append([]Notification{rec}, s.records...)
	return rec, nil
}

func (s *InMemoryStore) ListForUser(_ context.Context, email string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	target := strings.ToLower(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, 0, limit)
	for _, rec := range s.records {
		if rec.To != target {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, email, id string) (bool, error) {
	target := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].To == target && s.records[i].ID == id {
			s.records[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) MarkAllRead(_ context.Context, email string) (int, error) {
	target := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.records {
		if s.records[i].To == target && !s.records[i].Read {
			s.records[i].Read = true
			changed++
		}
	}
	return changed, nil
}

func (s *InMemoryStore) UnreadCount(_ context.Context, email string) (int, error) {
	target := strings.ToLower(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.records {
		if rec.To == target && !rec.Read {
			count++
		}
	}
	return count, nil
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
