package digest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"amdesk/internal/approval"
	"amdesk/internal/mandate"
	"amdesk/internal/platform/metrics"
	"amdesk/internal/rfp"
	"amdesk/internal/user"
)

type stubDirectory struct {
	users []user.User
	err   error
}

func (d *stubDirectory) List(context.Context) ([]user.User, error) { return d.users, d.err }

type stubRFPs struct {
	rfps []rfp.RFP
	err  error
}

func (s *stubRFPs) List(context.Context) ([]rfp.RFP, error) { return s.rfps, s.err }

type stubApprovals struct {
	approvals []approval.Approval
	err       error
}

func (s *stubApprovals) List(context.Context) ([]approval.Approval, error) {
	return s.approvals, s.err
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

type ServiceSuite struct {
	suite.Suite
	directory *stubDirectory
	rfps      *stubRFPs
	approvals *stubApprovals
	breaches  *stubBreaches
	store     *InMemoryStore
	service   *Service
	ctx       context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.directory = &stubDirectory{users: []user.User{
		{Email: "thomas.francis@amdesk.example", Name: "Thomas Francis",
			Preferences: user.Preferences{EmailDigest: user.DigestDaily}},
		{Email: "kara.james@amdesk.example", Name: "Kara James",
			Preferences: user.Preferences{EmailDigest: user.DigestNone}},
		{Email: "priya.nair@amdesk.example", Name: "Priya Nair",
			Preferences: user.Preferences{EmailDigest: user.DigestWeekly}},
	}}
	s.rfps = &stubRFPs{rfps: []rfp.RFP{{ID: "RFP-SCS-24Q3", Title: "AU Equity", Client: "SunCoast Super", Due: "2026-09-05"}}}
	s.approvals = &stubApprovals{approvals: []approval.Approval{{ID: "AM-52731", Status: approval.StatusPending}}}
	s.breaches = &stubBreaches{flat: []mandate.FlatBreach{
		{ID: "BR-SCS-001", MandateID: "M-AUS-EQ-SCS-001", Status: mandate.StatusOpen, Severity: mandate.SeverityCritical},
		{ID: "BR-QLI-001", MandateID: "M-AU-BOND-QLI-001", Status: mandate.StatusResolved},
	}}
	s.store = NewInMemoryStore()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.directory, s.rfps, s.approvals, s.breaches, s.store, logger, metrics.NewForTest())
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestRunSkipsOptedOutUsers() {
	res, err := s.service.Run(s.ctx, "daily")
	s.Require().NoError(err)
	s.Equal(2, res.Generated)
	s.Len(res.DigestIDs, 2)

	// Opted-out user has no digest on record.
	mine, err := s.store.List(s.ctx, "kara.james@amdesk.example", 0)
	s.Require().NoError(err)
	s.Empty(mine)

	mine, err = s.store.List(s.ctx, "thomas.francis@amdesk.example", 0)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal("AM Desk Workspace - Daily Digest", mine[0].Subject)
}

func (s *ServiceSuite) TestRunCountsSnapshotSizes() {
	res, err := s.service.Run(s.ctx, "daily")
	s.Require().NoError(err)
	s.Require().NotEmpty(res.DigestIDs)

	d, err := s.store.Get(s.ctx, res.DigestIDs[0])
	s.Require().NoError(err)
	s.Equal(1, d.Items.RFPsCount)
	s.Equal(1, d.Items.ApprovalsCount)
	// Only the open breach counts.
	s.Equal(1, d.Items.BreachesCount)
	s.Contains(d.BodyHTML, "M-AUS-EQ-SCS-001")
}

func (s *ServiceSuite) TestDirectoryFailureProducesNothing() {
	s.directory.err = errors.New("directory down")

	res, err := s.service.Run(s.ctx, "daily")
	s.Require().NoError(err)
	s.Equal(0, res.Generated)
	s.NotNil(res.DigestIDs)
	s.Empty(res.DigestIDs)
}

func (s *ServiceSuite) TestSourceFailuresDegradeToEmptySections() {
	s.rfps.err = errors.New("rfp store down")
	s.approvals.err = errors.New("approval store down")

	res, err := s.service.Run(s.ctx, "daily")
	s.Require().NoError(err)
	s.Equal(2, res.Generated)

	d, err := s.store.Get(s.ctx, res.DigestIDs[0])
	s.Require().NoError(err)
	s.Equal(0, d.Items.RFPsCount)
	s.Equal(0, d.Items.ApprovalsCount)
	s.Equal(1, d.Items.BreachesCount)
}

func (s *ServiceSuite) TestRerunAppendsNewRecords() {
	_, err := s.service.Run(s.ctx, "daily")
	s.Require().NoError(err)
	_, err = s.service.Run(s.ctx, "weekly")
	s.Require().NoError(err)

	mine, err := s.store.List(s.ctx, "priya.nair@amdesk.example", 0)
	s.Require().NoError(err)
	s.Len(mine, 2)
	s.NotEqual(mine[0].ID, mine[1].ID)
}
