package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"amdesk/internal/bus"
	"amdesk/internal/notification"
	"amdesk/internal/platform/metrics"
	"amdesk/internal/user"
)

type stubDirectory struct {
	users []user.User
	err   error
}

func (d *stubDirectory) List(context.Context) ([]user.User, error) {
	return d.users, d.err
}

type recordingStore struct {
	added   []notification.New
	failFor string
}

func (s *recordingStore) Add(_ context.Context, n notification.New) (notification.Notification, error) {
	if s.failFor != "" && n.To == s.failFor {
		return notification.Notification{}, errors.New("write failed")
	}
	s.added = append(s.added, n)
	return notification.Notification{ID: "N-1001", To: n.To}, nil
}

type NotifierSuite struct {
	suite.Suite
	directory *stubDirectory
	store     *recordingStore
	notifier  *Notifier
	ctx       context.Context
}

func (s *NotifierSuite) SetupTest() {
	s.directory = &stubDirectory{users: []user.User{
		{
			Email: "thomas.francis@amdesk.example",
			Preferences: user.Preferences{
				EmailAlerts: map[string]bool{user.PrefRFPStages: true, user.PrefBreaches: true},
			},
		},
		{
			Email: "kara.james@amdesk.example",
			Preferences: user.Preferences{
				EmailAlerts: map[string]bool{user.PrefRFPStages: false, user.PrefApprovals: true},
			},
		},
	}}
	s.store = &recordingStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.notifier = New(s.directory, s.store, logger, metrics.NewForTest())
	s.ctx = context.Background()
}

func TestNotifierSuite(t *testing.T) {
	suite.Run(t, new(NotifierSuite))
}

func (s *NotifierSuite) handle(evt bus.Event) {
	s.notifier.Handle(s.ctx, bus.Envelope{Type: evt.EventType(), Event: evt})
}

func (s *NotifierSuite) TestRFPStageFanOut() {
	s.handle(bus.RFPStageChanged{ID: "RFP-SCS-24Q3", Stage: "Submitted"})

	s.Require().Len(s.store.added, 1)
	n := s.store.added[0]
	s.Equal("thomas.francis@amdesk.example", n.To)
	s.Equal(notification.CategoryRFP, n.Type)
	s.Equal("RFP stage -> Submitted", n.Title)
	s.Equal("RFP RFP-SCS-24Q3 moved to Submitted.", n.Body)
	s.Equal("RFP-SCS-24Q3", n.Ref)
}

func (s *NotifierSuite) TestBreachEvents() {
	s.Run("opened breach references the mandate", func() {
		s.handle(bus.BreachOpened{MandateID: "M-AUS-EQ-SCS-001", BreachID: "BR-SCS-002", Status: "Open"})

		s.Require().Len(s.store.added, 1)
		n := s.store.added[0]
		s.Equal("New Mandate Breach", n.Title)
		s.Equal("Mandate M-AUS-EQ-SCS-001 - BR-SCS-002 -> Open", n.Body)
		s.Equal("M-AUS-EQ-SCS-001", n.Ref)
	})

	s.Run("status is omitted from the body when empty", func() {
		s.store.added = nil
		s.handle(bus.BreachUpdated{MandateID: "M-AU-BOND-QLI-001", BreachID: "BR-QLI-002"})

		s.Require().Len(s.store.added, 1)
		s.Equal("Breach Updated", s.store.added[0].Title)
		s.Equal("Mandate M-AU-BOND-QLI-001 - BR-QLI-002", s.store.added[0].Body)
	})
}

func (s *NotifierSuite) TestApprovalEvents() {
	s.handle(bus.ApprovalCreated{ID: "AM-90001", Summary: "for $250,000"})

	s.Require().Len(s.store.added, 1)
	s.Equal("kara.james@amdesk.example", s.store.added[0].To)
	s.Equal("New Approval", s.store.added[0].Title)
	s.Equal("Approval AM-90001 for $250,000", s.store.added[0].Body)
}

func (s *NotifierSuite) TestUnknownEventTypeIsNoOp() {
	s.notifier.Handle(s.ctx, bus.Envelope{Type: "market.tick", Event: nil})
	s.Empty(s.store.added)
}

func (s *NotifierSuite) TestDirectoryFailureSkipsFanOut() {
	s.directory.err = errors.New("directory unavailable")

	s.NotPanics(func() {
		s.handle(bus.RFPStageChanged{ID: "RFP-SCS-24Q3", Stage: "Won"})
	})
	s.Empty(s.store.added)
}

func (s *NotifierSuite) TestOneFailedWriteDoesNotBlockOthers() {
	s.directory.users = append(s.directory.users, user.User{
		Email: "priya.nair@amdesk.example",
		Preferences: user.Preferences{
			EmailAlerts: map[string]bool{user.PrefBreaches: true},
		},
	})
	s.store.failFor = "thomas.francis@amdesk.example"

	s.handle(bus.BreachOpened{MandateID: "M-AUS-EQ-SCS-001", BreachID: "BR-SCS-003", Status: "Open"})

	s.Require().Len(s.store.added, 1)
	s.Equal("priya.nair@amdesk.example", s.store.added[0].To)
}
