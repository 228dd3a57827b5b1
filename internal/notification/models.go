package notification

import "time"

// Category tags a notification by the business area that produced it.
type Category string

const (
	CategoryRFP      Category = "RFP"
	CategoryBreach   Category = "Breach"
	CategoryApproval Category = "Approval"
)

// Length caps are a hard contract: stores truncate, never reject.
const (
	MaxTitleLen = 160
	MaxBodyLen  = 2000
)

// Notification is a persisted per-user message. Records are created by the
// notifier, flipped to read by the owner, and never deleted.
type Notification struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"idNum"`
	To        string    `json:"to"`
	Type      Category  `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Ref       string    `json:"ref,omitempty"`
	Timestamp time.Time `json:"ts"`
	Read      bool      `json:"read"`
}

// New carries the caller-supplied fields for a notification to be created.
type New struct {
	To    string
	Type  Category
	Title string
	Body  string
	Ref   string
}
