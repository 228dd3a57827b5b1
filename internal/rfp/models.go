package rfp

import "time"

// Pipeline stages an RFP can occupy. Stage changes outside this set are
// rejected.
var Stages = []string{"Draft", "Internal Review", "Client Review", "Submitted", "Won", "Lost"}

// ValidStage reports whether stage is one of the allowed pipeline stages.
func ValidStage(stage string) bool {
	for _, s := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Note is a timestamped comment on an RFP, newest first.
type Note struct {
	Timestamp time.Time `json:"ts"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
}

// ChecklistItem tracks one deliverable inside an RFP.
type ChecklistItem struct {
	Key  string `json:"key"`
	Done bool   `json:"done"`
}

// Attachment is uploaded document metadata (no file contents in this system).
type Attachment struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       string    `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// RFP is a tracked request-for-proposal. Due is an ISO-8601 date string
/// (YYYY-MM-DD): lexicographic order on it is chronological order, which the
// due-date sorting in listings and digests relies on.
type RFP struct {
	ID          string          `json:"id"`
	Client      string          `json:"client"`
	Title       string          `json:"title"`
	Stage       string          `json:"stage"`
	Owner       string          `json:"owner"`
	Due         string          `json:"due,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Notes       []Note          `json:"notes"`
	Checklist   []ChecklistItem `json:"checklist"`
	Attachments []Attachment    `json:"attachments"`
}
