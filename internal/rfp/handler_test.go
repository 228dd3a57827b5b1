package rfp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"amdesk/internal/audit"
	"amdesk/internal/bus"
	"amdesk/internal/platform/metrics"
	"amdesk/internal/platform/middleware"
)

type RFPHandlerSuite struct {
	suite.Suite
	store  *FileStore
	bus    *bus.Bus
	audit  *audit.Log
	router chi.Router

	mu     sync.Mutex
	events []bus.Envelope
}

func (s *RFPHandlerSuite) SetupTest() {
	store, err := NewFileStore(filepath.Join(s.T().TempDir(), "rfps.json"))
	s.Require().NoError(err)
	s.store = store

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.bus = bus.New(logger, metrics.NewForTest())
	s.events = nil
	s.bus.Subscribe(func(_ context.Context, evt bus.Envelope) {
		s.mu.Lock()
		s.events = append(s.events, evt)
		s.mu.Unlock()
	})

	s.audit = audit.NewLog(nil)
	h := NewHandler(store, s.bus, s.audit, logger)
	s.router = chi.NewRouter()
	s.router.Route("/api/rfps", h.Register)
}

func TestRFPHandlerSuite(t *testing.T) {
	suite.Run(t, new(RFPHandlerSuite))
}

func (s *RFPHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserEmail, "kara.james@amdesk.example")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func (s *RFPHandlerSuite) published() []bus.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bus.Envelope{}, s.events...)
}

func (s *RFPHandlerSuite) TestSetStagePublishesEvent() {
	rec := s.do(http.MethodPut, "/api/rfps/RFP-SCS-24Q3/stage", `{"stage":"Submitted"}`)
	s.Require().Equal(http.StatusOK, rec.Code)

	var updated RFP
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&updated))
	s.Equal("Submitted", updated.Stage)

	events := s.published()
	s.Require().Len(events, 1)
	s.Equal("rfp.stage", events[0].Type)

	evt, ok := events[0].Event.(bus.RFPStageChanged)
	s.Require().True(ok)
	s.Equal("RFP-SCS-24Q3", evt.ID)
	s.Equal("Submitted", evt.Stage)

	entries := s.audit.List(context.Background(), 0)
	s.Equal("rfp.stage", entries[0].Action)
	s.Equal("RFP-SCS-24Q3 -> Submitted", entries[0].Detail)
	s.Equal("kara.james@amdesk.example", entries[0].Actor)
}

func (s *RFPHandlerSuite) TestInvalidStagePublishesNothing() {
	rec := s.do(http.MethodPut, "/api/rfps/RFP-SCS-24Q3/stage", `{"stage":"Parked"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.published())
}

func (s *RFPHandlerSuite) TestCreateDoesNotPublish() {
	rec := s.do(http.MethodPost, "/api/rfps", `{"client":"Quill Insurance","title":"Global Credit Mandate","due":"2026-11-30"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Empty(s.published())

	entries := s.audit.List(context.Background(), 0)
	s.Equal("rfp.create", entries[0].Action)
}

func (s *RFPHandlerSuite) TestGetUnknownIsNotFound() {
	rec := s.do(http.MethodGet, "/api/rfps/RFP-NOPE", "")
	s.Equal(http.StatusNotFound, rec.Code)
}
