package notification

import "context"

// DefaultListLimit caps ListForUser when callers pass a non-positive limit.
const DefaultListLimit = 50

// Store is the persisted per-user notification list.
//
// Contract shared by all implementations:
//   - Add assigns the next id in the "N-<seq>" sequence (starting above
//     1000), truncates title/body to their caps, lower-cases the recipient,
//     and inserts at the head so listings are most-recent-first.
//   - Ids are strictly increasing and unique; the sequence survives any
//     future deletion because it is carried separately from list length.
//   - Email comparisons are case-insensitive.
//   - MarkRead returns false when no (email, id) pair matches and true
//     otherwise, including when the notification was already read.
type Store interface {
	Add(ctx context.Context, n New) (Notification, error)
	ListForUser(ctx context.Context, email string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, email, id string) (bool, error)
	MarkAllRead(ctx context.Context, email string) (int, error)
	UnreadCount(ctx context.Context, email string) (int, error)
}
