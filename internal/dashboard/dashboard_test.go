package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"amdesk/internal/approval"
	"amdesk/internal/client"
	"amdesk/internal/mandate"
)

type stubApprovals struct {
	approvals []approval.Approval
	err       error
}

func (s *stubApprovals) List(context.Context) ([]approval.Approval, error) {
	return s.approvals, s.err
}

type stubClients struct {
	total    int64
	meetings []client.Meeting
}

func (s *stubClients) TotalAUMAud(context.Context) int64 { return s.total }
func (s *stubClients) UpcomingMeetings(context.Context, time.Time, time.Duration) []client.Meeting {
	return s.meetings
}

type stubBreaches struct {
	flat []mandate.FlatBreach
}

func (s *stubBreaches) Breaches(_ context.Context, status mandate.BreachStatus) []mandate.FlatBreach {
	out := []mandate.FlatBreach{}
	for _, b := range s.flat {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

type DashboardSuite struct {
	suite.Suite
	approvals *stubApprovals
	clients   *stubClients
	breaches  *stubBreaches
	service   *Service
	now       time.Time
	ctx       context.Context
}

func (s *DashboardSuite) SetupTest() {
	s.now = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	s.approvals = &stubApprovals{approvals: []approval.Approval{
		{ID: "AM-1", Status: approval.StatusPending},
		{ID: "AM-2", Status: approval.StatusPending},
		{ID: "AM-3", Status: approval.StatusApproved},
	}}
	s.clients = &stubClients{
		total: 7050000000,
		meetings: []client.Meeting{
			{When: s.now.Add(48 * time.Hour), Topic: "Q2 Performance Review"},
		},
	}
	s.breaches = &stubBreaches{flat: []mandate.FlatBreach{
		{ID: "BR-1", MandateID: "M-1", Client: "SunCoast Super", Type: "Tracking Error",
			Severity: mandate.SeverityCritical, Status: mandate.StatusOpen, Opened: s.now.Add(-48 * time.Hour)},
		{ID: "BR-2", MandateID: "M-2", Client: "Quill Insurance", Type: "Concentration",
			Severity: mandate.SeverityMedium, Status: mandate.StatusOpen, Opened: s.now.Add(-40 * 24 * time.Hour)},
		{ID: "BR-3", MandateID: "M-2", Status: mandate.StatusResolved, Opened: s.now.Add(-10 * 24 * time.Hour)},
	}}

	s.service = NewService(s.approvals, s.clients, s.breaches)
	s.service.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func TestDashboardSuite(t *testing.T) {
	suite.Run(t, new(DashboardSuite))
}

func (s *DashboardSuite) TestMetrics() {
	m, err := s.service.Metrics(s.ctx)
	s.Require().NoError(err)

	s.Equal(int64(7050000000), m.TotalAUMAud)
	s.Equal(2, m.Approvals.Pending)
	s.Equal(1, m.Approvals.Approved)
	// Only the open breach inside the 30 day window counts.
	s.Equal(1, m.BreachesLast30)
	s.Len(m.Meetings, 1)
	s.Equal(s.now, m.LastUpdated)
}

func (s *DashboardSuite) TestMetricsPropagatesApprovalErrors() {
	s.approvals.err = errors.New("file unreadable")
	_, err := s.service.Metrics(s.ctx)
	s.Require().Error(err)
}

func (s *DashboardSuite) TestActivityFeed() {
	feed := s.service.Activity(s.ctx)
	s.Require().NotEmpty(feed)
	s.LessOrEqual(len(feed), activityLimit)

	for i := 1; i < len(feed); i++ {
		s.False(feed[i-1].TS.Before(feed[i].TS), "feed must be newest first")
	}
}

func (s *DashboardSuite) TestAlerts() {
	alerts := s.service.Alerts(s.ctx)
	s.Require().Len(alerts, 2)

	byID := map[string]Alert{}
	for _, a := range alerts {
		byID[a.ID] = a
	}

	s.Equal(2, byID["BR-1"].DaysOpen)
	s.Equal(40, byID["BR-2"].DaysOpen)
	s.Equal("SunCoast Super", byID["BR-1"].Client)
	s.Equal(mandate.SeverityCritical, byID["BR-1"].Severity)

	s.Run("daysOpen never drops below one", func() {
		s.breaches.flat = []mandate.FlatBreach{
			{ID: "BR-NOW", Status: mandate.StatusOpen, Opened: s.now.Add(-5 * time.Minute)},
		}
		alerts := s.service.Alerts(s.ctx)
		s.Require().Len(alerts, 1)
		s.Equal(1, alerts[0].DaysOpen)
	})
}

func (s *DashboardSuite) TestDeadlinesSortedByDue() {
	items := s.service.Deadlines(s.ctx)
	s.Require().Len(items, 4)
	for i := 1; i < len(items); i++ {
		s.LessOrEqual(items[i-1].Due, items[i].Due)
	}
	s.Equal("2026-09-03", items[0].Due)
}
