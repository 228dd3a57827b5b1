package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisSeqKey     = "notif:seq"
	redisUserPrefix = "notif:to:"
)

// RedisStore persists notifications in Redis: a shared INCR sequence plus one
// list per recipient, newest at the head. Useful when the workspace runs more
// than one process against shared state; the single-writer contract from the
// in-memory store still applies to mutations of individual records.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func userKey(email string) string {
	return redisUserPrefix + strings.ToLower(email)
}

func (s *RedisStore) Add(ctx context.Context, n New) (Notification, error) {
	// Seed the sequence so the first id lands above 1000, matching the
	// in-memory store.
	if err := s.client.SetNX(ctx, redisSeqKey, seqBase, 0).Err(); err != nil {
		return Notification{}, fmt.Errorf("seed notification sequence: %w", err)
	}
	seq, err := s.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return Notification{}, fmt.Errorf("next notification sequence: %w", err)
	}

	rec := Notification{
		ID:        fmt.Sprintf("N-%d", seq),
		Seq:       seq,
		To:        strings.ToLower(n.To),
		Type:      n.Type,
		Title:     clip(n.Title, MaxTitleLen),
		Body:      clip(n.Body, MaxBodyLen),
		Ref:       n.Ref,
		Timestamp: time.Now().UTC(),
		Read:      false,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Notification{}, fmt.Errorf("encode notification: %w", err)
	}
	if err := s.client.LPush(ctx, userKey(rec.To), data).Err(); err != nil {
		return Notification{}, fmt.Errorf("push notification: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) ListForUser(ctx context.Context, email string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	raw, err := s.client.LRange(ctx, userKey(email), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var rec Notification
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) MarkRead(ctx context.Context, email, id string) (bool, error) {
	key := userKey(email)
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return false, fmt.Errorf("scan notifications: %w", err)
	}
	for i, item := range raw {
		var rec Notification
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return false, fmt.Errorf("decode notification: %w", err)
		}
		if rec.ID != id {
			continue
		}
		rec.Read = true
		data, err := json.Marshal(rec)
		if err != nil {
			return false, fmt.Errorf("encode notification: %w", err)
		}
		if err := s.client.LSet(ctx, key, int64(i), data).Err(); err != nil {
			return false, fmt.Errorf("update notification: %w", err)
		}
		return true, nil
	}
	return false, nil
}

func (s *RedisStore) MarkAllRead(ctx context.Context, email string) (int, error) {
	key := userKey(email)
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("scan notifications: %w", err)
	}
	changed := 0
	for i, item := range raw {
		var rec Notification
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return changed, fmt.Errorf("decode notification: %w", err)
		}
		if rec.Read {
			continue
		}
		rec.Read = true
		data, err := json.Marshal(rec)
		if err != nil {
			return changed, fmt.Errorf("encode notification: %w", err)
		}
		if err := s.client.LSet(ctx, key, int64(i), data).Err(); err != nil {
			return changed, fmt.Errorf("update notification: %w", err)
		}
		changed++
	}
	return changed, nil
}

func (s *RedisStore) UnreadCount(ctx context.Context, email string) (int, error) {
	raw, err := s.client.LRange(ctx, userKey(email), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("scan notifications: %w", err)
	}
	count := 0
	for _, item := range raw {
		var rec Notification
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return 0, fmt.Errorf("decode notification: %w", err)
		}
		if !rec.Read {
			count++
		}
	}
	return count, nil
}
