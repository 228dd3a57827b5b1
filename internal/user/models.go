package user

// Preference keys for emailAlerts, matched by the notifier when mapping event
// categories to opted-in users.
const (
	PrefApprovals = "approvals"
	PrefBreaches  = "breaches"
	PrefRFPStages = "rfpStages"
)

// Digest cadence values for preferences.emailDigest.
const (
	DigestNone   = "none"
	DigestDaily  = "daily"
	DigestWeekly = "weekly"
)

// Preferences captures a user's notification opt-ins.
type Preferences struct {
	EmailAlerts map[string]bool `json:"emailAlerts"`
	EmailDigest string          `json:"emailDigest"`
	LiveUpdates bool            `json:"liveUpdates"`
}

// User is a directory record. Email is the unique key, compared
// case-insensitively everywhere.
type User struct {
	Email        string      `json:"email"`
	Name         string      `json:"name,omitempty"`
	SID          string      `json:"sid,omitempty"`
	Username     string      `json:"username,omitempty"`
	Role         string      `json:"role"`
	Department   string      `json:"department,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Photo        string      `json:"photo,omitempty"`
	PasswordHash string      `json:"passwordHash,omitempty"`
	Preferences  Preferences `json:"preferences"`
}

// Redacted returns a copy safe for API responses.
func (u User) Redacted() User {
	u.PasswordHash = ""
	return u
}

// WantsAlert reports whether the user opted into the given alert key.
func (u User) WantsAlert(key string) bool {
	return u.Preferences.EmailAlerts[key]
}

// WantsDigest reports whether the user receives digest runs at all.
func (u User) WantsDigest() bool {
	d := u.Preferences.EmailDigest
	return d != "" && d != DigestNone
}
