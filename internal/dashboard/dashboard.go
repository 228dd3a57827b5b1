// Package dashboard aggregates headline figures from the other desks into
// the landing-page views: metrics, activity feed, alerts and deadlines.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"amdesk/internal/approval"
	"amdesk/internal/client"
	"amdesk/internal/mandate"
)

// ApprovalSource yields all approvals for status counting.
type ApprovalSource interface {
	List(ctx context.Context) ([]approval.Approval, error)
}

// ClientSource yields book-level client figures.
type ClientSource interface {
	TotalAUMAud(ctx context.Context) int64
	UpcomingMeetings(ctx context.Context, from time.Time, window time.Duration) []client.Meeting
}

// BreachSource yields the flattened breach view.
type BreachSource interface {
	Breaches(ctx context.Context, status mandate.BreachStatus) []mandate.FlatBreach
}

type Metrics struct {
	TotalAUMAud    int64            `json:"totalAumAud"`
	MTDChangePct   float64          `json:"mtdChangePct"`
	Approvals      ApprovalCounts   `json:"approvals"`
	BreachesLast30 int              `json:"breachesLast30"`
	Meetings       []client.Meeting `json:"meetings"`
	LastUpdated    time.Time        `json:"lastUpdated"`
}

type ApprovalCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
}

type ActivityEvent struct {
	ID     string    `json:"id"`
	TS     time.Time `json:"ts"`
	Type   string    `json:"type"`
	Status string    `json:"status"`
	Ref    string    `json:"ref"`
	Text   string    `json:"text"`
}

type Alert struct {
	ID        string           `json:"id"`
	MandateID string           `json:"mandateId"`
	Client    string           `json:"client"`
	Type      string           `json:"type"`
	Severity  mandate.Severity `json:"severity"`
	DaysOpen  int              `json:"daysOpen"`
	Note      string           `json:"note"`
}

type Deadline struct {
	Due    string `json:"due"`
	Title  string `json:"title"`
	Client string `json:"client"`
	Owner  string `json:"owner"`
	Ref    string `json:"ref"`
}

const (
	activityLimit  = 20
	meetingWindow  = 7 * 24 * time.Hour
	breachLookback = 30 * 24 * time.Hour
)

// Service computes dashboard views on demand. The activity feed is seeded
// in memory and resets on restart.
type Service struct {
	approvals ApprovalSource
	clients   ClientSource
	breaches  BreachSource
	activity  []ActivityEvent
	now       func() time.Time
}

func NewService(approvals ApprovalSource, clients ClientSource, breaches BreachSource) *Service {
	s := &Service{
		approvals: approvals,
		clients:   clients,
		breaches:  breaches,
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.activity = seedActivity(s.now())
	return s
}

func seedActivity(now time.Time) []ActivityEvent {
	return []ActivityEvent{
		{ID: "EV-001", TS: now.Add(-15 * time.Minute), Type: "approval", Status: "Created", Ref: "AM-52731", Text: "Trade exception request created for AU EQ book."},
		{ID: "EV-002", TS: now.Add(-12 * time.Minute), Type: "report", Status: "Generated", Ref: "RISK-VaR-TE", Text: "Risk - VaR & Tracking Error by Fund generated for SunCoast Super."},
		{ID: "EV-003", TS: now.Add(-6 * time.Minute), Type: "rfp", Status: "Status", Ref: "RFP-SCS-24Q3", Text: "RFP moved to Draft for SunCoast Super."},
		{ID: "EV-004", TS: now.Add(-3 * time.Minute), Type: "breach", Status: "Resolved", Ref: "BR-QLI-001", Text: "Duration drift outside band - acknowledged and resolved."},
	}
}

func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	approvals, err := s.approvals.List(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("listing approvals: %w", err)
	}
	var counts ApprovalCounts
	for _, a := range approvals {
		switch a.Status {
		case approval.StatusPending:
			counts.Pending++
		case approval.StatusApproved:
			counts.Approved++
		}
	}

	now := s.now()
	cutoff := now.Add(-breachLookback)
	last30 := 0
	for _, b := range s.breaches.Breaches(ctx, mandate.StatusOpen) {
		if !b.Opened.Before(cutoff) && !b.Opened.After(now) {
			last30++
		}
	}

	return Metrics{
		TotalAUMAud:    s.clients.TotalAUMAud(ctx),
		MTDChangePct:   1.9,
		Approvals:      counts,
		BreachesLast30: last30,
		Meetings:       s.clients.UpcomingMeetings(ctx, now, meetingWindow),
		LastUpdated:    now,
	}, nil
}

func (s *Service) Activity(_ context.Context) []ActivityEvent {
	feed := make([]ActivityEvent, len(s.activity))
	copy(feed, s.activity)
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].TS.After(feed[j].TS) })
	if len(feed) > activityLimit {
		feed = feed[:activityLimit]
	}
	return feed
}

// Alerts maps open breaches into dashboard alerts. daysOpen rounds up and
// is never below 1.
func (s *Service) Alerts(ctx context.Context) []Alert {
	open := s.breaches.Breaches(ctx, mandate.StatusOpen)
	now := s.now()

	alerts := make([]Alert, 0, len(open))
	for _, b := range open {
		days := int((now.Sub(b.Opened) + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
		if days < 1 {
			days = 1
		}
		alerts = append(alerts, Alert{
			ID:        b.ID,
			MandateID: b.MandateID,
			Client:    b.Client,
			Type:      b.Type,
			Severity:  b.Severity,
			DaysOpen:  days,
			Note:      b.Note,
		})
	}
	return alerts
}

func (s *Service) Deadlines(_ context.Context) []Deadline {
	today := s.now()
	addDays := func(d int) string {
		return today.AddDate(0, 0, d).Format("2006-01-02")
	}

	items := []Deadline{
		{Due: addDays(2), Title: "Q3 Client Pack", Client: "Quill Insurance", Owner: "Coverage", Ref: "PK-QLI-Q3"},
		{Due: addDays(4), Title: "RFP - SunCoast Super Draft", Client: "SunCoast Super", Owner: "You", Ref: "RFP-SCS-24Q3"},
		{Due: addDays(7), Title: "Risk: VaR & TE Run", Client: "SunCoast Super", Owner: "Risk Ops", Ref: "RISK-VaR-TE"},
		{Due: addDays(10), Title: "Compliance Attest.", Client: "All Mandates", Owner: "Compliance", Ref: "COMP-QTR"},
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Due < items[j].Due })
	return items
}
