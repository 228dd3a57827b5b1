package mandate

import "time"

// Severity of a breach. Informal ordering only; nothing sorts on it.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityCritical Severity = "Critical"
)

// BreachStatus is the breach lifecycle state.
type BreachStatus string

const (
	StatusOpen         BreachStatus = "Open"
	StatusAcknowledged BreachStatus = "Acknowledged"
	StatusResolved     BreachStatus = "Resolved"
)

// CanTransitionTo enforces the forward-only lifecycle: Open -> Acknowledged
// -> Resolved, no skipping, no reopening.
func (s BreachStatus) CanTransitionTo(next BreachStatus) bool {
	switch s {
	case StatusOpen:
		return next == StatusAcknowledged
	case StatusAcknowledged:
		return next == StatusResolved
	default:
		return false
	}
}

// Valid reports whether s is a known status value.
func (s BreachStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusAcknowledged, StatusResolved:
		return true
	}
	return false
}

// Breach is a recorded violation of a mandate's risk band, embedded in its
// mandate.
type Breach struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Severity Severity     `json:"severity"`
	Status   BreachStatus `json:"status"`
	Opened   time.Time    `json:"opened"`
	Resolved *time.Time   `json:"resolved,omitempty"`
	Note     string       `json:"note,omitempty"`
}

// RiskBands holds the mandate's configured thresholds.
type RiskBands struct {
	TrackingErrorBps       []int   `json:"trackingErrorBps,omitempty"`
	IssuerConcentrationPct float64 `json:"issuerConcentrationPct,omitempty"`
}

// KPIs holds the mandate's current headline figures.
type KPIs struct {
	YTDReturnPct     float64 `json:"ytdReturnPct,omitempty"`
	TrackingErrorBps float64 `json:"trackingErrorBps,omitempty"`
}

// Mandate is a client's investment strategy agreement.
type Mandate struct {
	ID        string    `json:"id"`
	Client    string    `json:"client"`
	Strategy  string    `json:"strategy,omitempty"`
	Benchmark string    `json:"benchmark,omitempty"`
	Bands     RiskBands `json:"bands"`
	KPIs      KPIs      `json:"kpis"`
	Breaches  []Breach  `json:"breaches"`
}

// FlatBreach is the denormalized breach view produced by the aggregator:
// breach fields plus owning mandate context, sorted newest-opened first.
type FlatBreach struct {
	ID        string       `json:"id"`
	MandateID string       `json:"mandateId"`
	Client    string       `json:"client"`
	Type      string       `json:"type"`
	Severity  Severity     `json:"severity"`
	Status    BreachStatus `json:"status"`
	Opened    time.Time    `json:"opened"`
	Resolved  *time.Time   `json:"resolved,omitempty"`
	Note      string       `json:"note"`
}
