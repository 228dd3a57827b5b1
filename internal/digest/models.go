package digest

import "time"

// Items is the counts snapshot frozen into a digest at build time. The
// referenced entities may change or disappear afterwards; the digest does not
// track them.
type Items struct {
	RFPsCount      int `json:"rfpsCount"`
	ApprovalsCount int `json:"approvalsCount"`
	BreachesCount  int `json:"breachesCount"`
}

// Digest is a persisted per-user HTML summary. Immutable once written.
type Digest struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"ts"`
	Subject   string    `json:"subject"`
	BodyHTML  string    `json:"bodyHtml"`
	Items     Items     `json:"items"`
}

// New carries the fields for a digest to be persisted.
type New struct {
	To       string
	Subject  string
	BodyHTML string
	Items    Items
}
