package approval

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"amdesk/pkg/platform/sentinel"
)

type ApprovalStoreSuite struct {
	suite.Suite
	store *FileStore
	ctx   context.Context
}

func (s *ApprovalStoreSuite) SetupTest() {
	store, err := NewFileStore(filepath.Join(s.T().TempDir(), "approvals.json"))
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func TestApprovalStoreSuite(t *testing.T) {
	suite.Run(t, new(ApprovalStoreSuite))
}

func (s *ApprovalStoreSuite) TestSeedsOnMissingFile() {
	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("AM-52731", list[0].ID)
	s.Equal(StatusPending, list[0].Status)
	s.Equal(StatusApproved, list[1].Status)
}

func (s *ApprovalStoreSuite) TestCreate() {
	s.Run("fills defaults and opens the audit trail", func() {
		item, err := s.store.Create(s.ctx, "kara.james@amdesk.example", NewApproval{
			Amount:  120000,
			Summary: "Limit raise for AU bond book",
		})
		s.Require().NoError(err)
		s.True(strings.HasPrefix(item.ID, "AM-"))
		s.Len(item.ID, 8)
		s.Equal("Unknown", item.Requester)
		s.Equal("Institutional", item.Dept)
		s.Equal(StatusPending, item.Status)
		s.NotNil(item.Docs)
		s.Require().Len(item.Audit, 1)
		s.Equal("Created", item.Audit[0].Action)
		s.Equal("kara.james@amdesk.example", item.Audit[0].User)
	})

	s.Run("new items land at the head", func() {
		item, err := s.store.Create(s.ctx, "kara.james@amdesk.example", NewApproval{ID: "AM-HEAD1", Summary: "newest"})
		s.Require().NoError(err)

		list, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Equal(item.ID, list[0].ID)
	})
}

func (s *ApprovalStoreSuite) TestApprove() {
	item, err := s.store.Approve(s.ctx, "AM-52731", "thomas.francis@amdesk.example")
	s.Require().NoError(err)
	s.Equal(StatusApproved, item.Status)

	last := item.Audit[len(item.Audit)-1]
	s.Equal("Approved", last.Action)
	s.Equal("thomas.francis@amdesk.example", last.User)

	_, err = s.store.Approve(s.ctx, "AM-99999", "thomas.francis@amdesk.example")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ApprovalStoreSuite) TestAppendTrail() {
	s.Run("records the event", func() {
		event, err := s.store.AppendTrail(s.ctx, "AM-52731", "priya.nair@amdesk.example", "Escalated", "sent to CIO")
		s.Require().NoError(err)
		s.Equal("Escalated", event.Action)
		s.Equal("sent to CIO", event.Meta)
	})

	s.Run("defaults blank actions to Note", func() {
		event, err := s.store.AppendTrail(s.ctx, "AM-52731", "priya.nair@amdesk.example", "", "just a remark")
		s.Require().NoError(err)
		s.Equal("Note", event.Action)
	})
}

func (s *ApprovalStoreSuite) TestPersistenceAcrossHandles() {
	_, err := s.store.Approve(s.ctx, "AM-52731", "thomas.francis@amdesk.example")
	s.Require().NoError(err)

	reopened, err := NewFileStore(s.store.path)
	s.Require().NoError(err)
	list, err := reopened.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(StatusApproved, list[0].Status)
}
