package approval

import "time"

// Approval statuses.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
)

// TrailEvent is one entry in an approval's embedded audit trail.
type TrailEvent struct {
	Timestamp time.Time `json:"ts"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Meta      string    `json:"meta"`
}

// Approval is a pending or completed approval request.
type Approval struct {
	ID        string       `json:"id"`
	Requester string       `json:"requester"`
	Dept      string       `json:"dept"`
	Amount    float64      `json:"amount"`
	Summary   string       `json:"summary,omitempty"`
	Status    string       `json:"status"`
	Submitted string       `json:"submitted"`
	Docs      []string     `json:"docs"`
	Audit     []TrailEvent `json:"audit"`
}
