package approval

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"amdesk/internal/platform/jsonfile"
	"amdesk/pkg/platform/sentinel"
)

// NewApproval carries caller-supplied fields; absent values get defaults and
// a generated id.
type NewApproval struct {
	ID        string   `json:"id"`
	Requester string   `json:"requester"`
	Dept      string   `json:"dept"`
	Amount    float64  `json:"amount"`
	Summary   string   `json:"summary"`
	Docs      []string `json:"docs"`
}

// FileStore is the JSON-file-backed approvals queue.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens the queue at path, writing seed data when the file does
// not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := jsonfile.Write(path, seedApprovals(time.Now().UTC())); err != nil {
			return nil, fmt.Errorf("seed approvals: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) load() ([]Approval, error) {
	return jsonfile.Read[[]Approval](s.path)
}

// List returns all approvals, newest first.
func (s *FileStore) List(_ context.Context) ([]Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Create inserts a new pending approval at the head of the queue.
func (s *FileStore) Create(_ context.Context, actor string, n NewApproval) (Approval, error) {
	now := time.Now().UTC()
	id := n.ID
	if id == "" {
		id = generateID()
	}
	if n.Requester == "" {
		n.Requester = "Unknown"
	}
	if n.Dept == "" {
		n.Dept = "Institutional"
	}
	if n.Docs == nil {
		n.Docs = []string{}
	}

	item := Approval{
		ID:        id,
		Requester: n.Requester,
		Dept:      n.Dept,
		Amount:    n.Amount,
		Summary:   n.Summary,
		Status:    StatusPending,
		Submitted: now.Format("2006-01-02"),
		Docs:      n.Docs,
		Audit: []TrailEvent{
			{Timestamp: now, User: actor, Action: "Created", Meta: "Created via API"},
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return Approval{}, err
	}
	list = append([]Approval{item}, list...)
	if err := jsonfile.Write(s.path, list); err != nil {
		return Approval{}, err
	}
	return item, nil
}

// Approve marks the approval Approved and appends to its trail.
func (s *FileStore) Approve(_ context.Context, id, actor string) (Approval, error) {
	return s.mutate(id, func(a *Approval) {
		a.Status = StatusApproved
		a.Audit = append(a.Audit, TrailEvent{
			Timestamp: time.Now().UTC(),
			User:      actor,
			Action:    "Approved",
			Meta:      "Approved via API",
		})
	})
}

// AppendTrail adds a free-form audit event to the approval and returns it.
func (s *FileStore) AppendTrail(_ context.Context, id, actor, action, meta string) (TrailEvent, error) {
	if action == "" {
		action = "Note"
	}
	event := TrailEvent{Timestamp: time.Now().UTC(), User: actor, Action: action, Meta: meta}
	_, err := s.mutate(id, func(a *Approval) {
		a.Audit = append(a.Audit, event)
	})
	if err != nil {
		return TrailEvent{}, err
	}
	return event, nil
}

func (s *FileStore) mutate(id string, fn func(*Approval)) (Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return Approval{}, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		fn(&list[i])
		if err := jsonfile.Write(s.path, list); err != nil {
			return Approval{}, err
		}
		return list[i], nil
	}
	return Approval{}, sentinel.ErrNotFound
}

// generateID produces a short queue id like AM-3F2A9.
func generateID() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
	return "AM-" + fragment
}

func seedApprovals(now time.Time) []Approval {
	return []Approval{
		{
			ID:        "AM-52731",
			Requester: "Kara James",
			Dept:      "Equities",
			Amount:    250000,
			Summary:   "Trade exception request for AU EQ book",
			Status:    StatusPending,
			Submitted: now.Format("2006-01-02"),
			Docs:      []string{},
			Audit: []TrailEvent{
				{Timestamp: now, User: "system", Action: "Created", Meta: "Seeded"},
			},
		},
		{
			ID:        "AM-52714",
			Requester: "Priya Nair",
			Dept:      "Coverage",
			Amount:    0,
			Summary:   "Fee schedule amendment sign-off",
			Status:    StatusApproved,
			Submitted: now.Add(-72 * time.Hour).Format("2006-01-02"),
			Docs:      []string{"fee-schedule-v3.pdf"},
			Audit: []TrailEvent{
				{Timestamp: now.Add(-72 * time.Hour), User: "system", Action: "Created", Meta: "Seeded"},
				{Timestamp: now.Add(-24 * time.Hour), User: "thomas.francis@amdesk.example", Action: "Approved", Meta: "Approved via API"},
			},
		},
	}
}
