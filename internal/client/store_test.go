package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ClientStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *ClientStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestClientStoreSuite(t *testing.T) {
	suite.Run(t, new(ClientStoreSuite))
}

func (s *ClientStoreSuite) TestListAndTotals() {
	list := s.store.List(s.ctx)
	s.Require().Len(list, 2)
	s.Equal("SunCoast Super", list[0].Name)
	s.Equal("Quill Insurance", list[1].Name)

	s.Equal(int64(4_200_000_000+2_850_000_000), s.store.TotalAUMAud(s.ctx))
}

func (s *ClientStoreSuite) TestUpcomingMeetings() {
	now := time.Now().UTC()

	s.Run("seven day window catches the nearer meeting", func() {
		meetings := s.store.UpcomingMeetings(s.ctx, now, 7*24*time.Hour)
		s.Require().Len(meetings, 1)
		s.Equal("Q2 Performance Review", meetings[0].Topic)
	})

	s.Run("wider window catches both", func() {
		meetings := s.store.UpcomingMeetings(s.ctx, now, 14*24*time.Hour)
		s.Len(meetings, 2)
	})

	s.Run("past meetings are excluded", func() {
		meetings := s.store.UpcomingMeetings(s.ctx, now.Add(30*24*time.Hour), 7*24*time.Hour)
		s.Empty(meetings)
	})
}

func (s *ClientStoreSuite) TestGetIsCaseInsensitive() {
	c, err := s.store.Get(s.ctx, "suncoast super")
	s.Require().NoError(err)
	s.Equal("SunCoast Super", c.Name)
	s.Equal("S&P/ASX 200 (TR)", c.Benchmark)

	_, err = s.store.Get(s.ctx, "Nobody Corp")
	s.Error(err)
}

func (s *ClientStoreSuite) TestAddNote() {
	note, err := s.store.AddNote(s.ctx, "Quill Insurance", "kara.james@amdesk.example", "Pricing deck sent.")
	s.Require().NoError(err)
	s.Contains(note.ID, "N-QUI")
	s.Equal("Pricing deck sent.", note.Text)

	c, err := s.store.Get(s.ctx, "Quill Insurance")
	s.Require().NoError(err)
	s.Require().Len(c.Notes, 2)
	s.Equal(note.ID, c.Notes[0].ID)

	s.Run("blank text rejected", func() {
		_, err := s.store.AddNote(s.ctx, "Quill Insurance", "kara.james@amdesk.example", "")
		s.Error(err)
	})

	s.Run("unknown client", func() {
		_, err := s.store.AddNote(s.ctx, "Nobody Corp", "kara.james@amdesk.example", "hi")
		s.Error(err)
	})
}

func (s *ClientStoreSuite) TestAddDocDefaults() {
	doc, err := s.store.AddDoc(s.ctx, "SunCoast Super", "IMA-Amendment.docx", "", "")
	s.Require().NoError(err)
	s.Equal("PDF", doc.Type)
	s.Equal("0 KB", doc.Size)

	c, err := s.store.Get(s.ctx, "SunCoast Super")
	s.Require().NoError(err)
	s.Require().Len(c.Docs, 2)
	s.Equal(doc.ID, c.Docs[0].ID)

	_, err = s.store.AddDoc(s.ctx, "SunCoast Super", "", "PDF", "1 KB")
	s.Error(err)
}
