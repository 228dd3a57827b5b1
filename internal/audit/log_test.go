package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type LogSuite struct {
	suite.Suite
	log *Log
	ctx context.Context
}

func (s *LogSuite) SetupTest() {
	s.log = NewLog(nil)
	s.ctx = context.Background()
}

func TestLogSuite(t *testing.T) {
	suite.Run(t, new(LogSuite))
}

func (s *LogSuite) TestBootEntry() {
	entries := s.log.List(s.ctx, 0)
	s.Require().Len(entries, 1)
	s.Equal("A-1001", entries[0].ID)
	s.Equal("system", entries[0].Actor)
	s.Equal("boot", entries[0].Action)
}

func (s *LogSuite) TestAppend() {
	s.Run("ids are monotonic and entries land at the head", func() {
		first := s.log.Append(s.ctx, "thomas.francis@amdesk.example", "rfp.create", "RFP-SCS-24Q3")
		second := s.log.Append(s.ctx, "thomas.francis@amdesk.example", "rfp.stage", "Draft -> Submitted")

		s.Equal("A-1002", first.ID)
		s.Equal("A-1003", second.ID)

		entries := s.log.List(s.ctx, 0)
		s.Require().Len(entries, 3)
		s.Equal("A-1003", entries[0].ID)
		s.Equal("A-1002", entries[1].ID)
		s.Equal("A-1001", entries[2].ID)
	})

	s.Run("blank actors are recorded as unknown", func() {
		entry := s.log.Append(s.ctx, "", "flag.update", "demoData=false")
		s.Equal("unknown", entry.Actor)
	})
}

func (s *LogSuite) TestListLimit() {
	for i := 0; i < DefaultListLimit+20; i++ {
		s.log.Append(s.ctx, "system", "tick", fmt.Sprintf("%d", i))
	}

	s.Run("caps non-positive limits at the default", func() {
		s.Len(s.log.List(s.ctx, 0), DefaultListLimit)
	})

	s.Run("honors explicit limits", func() {
		entries := s.log.List(s.ctx, 5)
		s.Require().Len(entries, 5)
		s.Equal(fmt.Sprintf("%d", DefaultListLimit+19), entries[0].Detail)
	})

	s.Run("clips limits beyond the log size", func() {
		s.Len(s.log.List(s.ctx, 10000), DefaultListLimit+21)
	})
}
