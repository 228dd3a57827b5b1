// Package client holds the in-memory client book: relationship records with
// contacts, meetings, documents and notes. State resets on restart.
package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	dErrors "amdesk/pkg/domain-errors"
	"amdesk/pkg/platform/sentinel"
)

// Contact is a named counterpart at the client.
type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Meeting is a scheduled client meeting.
type Meeting struct {
	When      time.Time `json:"when"`
	Topic     string    `json:"topic"`
	Attendees []string  `json:"attendees"`
}

// Doc is stored document metadata.
type Doc struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       string    `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Note is a relationship note, newest first.
type Note struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
}

// Client is a full relationship record.
type Client struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Domicile   string    `json:"domicile"`
	Owner      string    `json:"owner"`
	SLA        string    `json:"sla"`
	AUMAud     int64     `json:"aumAud"`
	FeeBps     int       `json:"feeBps"`
	LastReview string    `json:"lastReview"`
	NextReview string    `json:"nextReview"`
	Benchmark  string    `json:"benchmark"`
	Strategies []string  `json:"strategies"`
	Contacts   []Contact `json:"contacts"`
	Meetings   []Meeting `json:"meetings"`
	Docs       []Doc     `json:"docs"`
	Notes      []Note    `json:"notes"`
}

// Summary is the listing row.
type Summary struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Owner      string   `json:"owner"`
	SLA        string   `json:"sla"`
	AUMAud     int64    `json:"aumAud"`
	FeeBps     int      `json:"feeBps"`
	LastReview string   `json:"lastReview"`
	NextReview string   `json:"nextReview"`
	Strategies []string `json:"strategies"`
}

// InMemoryStore keeps the seeded client book.
type InMemoryStore struct {
	mu      sync.RWMutex
	clients []Client
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clients: seedClients(time.Now().UTC())}
}

// List returns summary rows for every client.
func (s *InMemoryStore) List(_ context.Context) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, Summary{
			Name:       c.Name,
			Type:       c.Type,
			Owner:      c.Owner,
			SLA:        c.SLA,
			AUMAud:     c.AUMAud,
			FeeBps:     c.FeeBps,
			LastReview: c.LastReview,
			NextReview: c.NextReview,
			Strategies: c.Strategies,
		})
	}
	return out
}

// TotalAUMAud sums assets under management across the book.
func (s *InMemoryStore) TotalAUMAud(_ context.Context) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, c := range s.clients {
		total += c.AUMAud
	}
	return total
}

// UpcomingMeetings returns meetings scheduled within the window.
func (s *InMemoryStore) UpcomingMeetings(_ context.Context, from time.Time, window time.Duration) []Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()

	until := from.Add(window)
	out := []Meeting{}
	for _, c := range s.clients {
		for _, m := range c.Meetings {
			if !m.When.Before(from) && !m.When.After(until) {
				out = append(out, m)
			}
		}
	}
	return out
}

// Get returns one client by case-insensitive name.
func (s *InMemoryStore) Get(_ context.Context, name string) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c := s.find(name); c != nil {
		return *c, nil
	}
	return Client{}, sentinel.ErrNotFound
}

// AddNote prepends a relationship note.
func (s *InMemoryStore) AddNote(_ context.Context, name, author, text string) (Note, error) {
	if text == "" {
		return Note{}, dErrors.New(dErrors.CodeBadRequest, "Missing note text")
	}
	if len(text) > 2000 {
		text = text[:2000]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(name)
	if c == nil {
		return Note{}, sentinel.ErrNotFound
	}
	note := Note{
		ID:        fmt.Sprintf("N-%s-%d", clientTag(c.Name), time.Now().UnixMilli()),
		Timestamp: time.Now().UTC(),
		User:      author,
		Text:      text,
	}
	c.Notes = append([]Note{note}, c.Notes...)
	return note, nil
}

// AddDoc prepends document metadata.
func (s *InMemoryStore) AddDoc(_ context.Context, name, docName, docType, size string) (Doc, error) {
	if docName == "" {
		return Doc{}, dErrors.New(dErrors.CodeBadRequest, "Missing document name")
	}
	if docType == "" {
		docType = "PDF"
	}
	if size == "" {
		size = "0 KB"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(name)
	if c == nil {
		return Doc{}, sentinel.ErrNotFound
	}
	doc := Doc{
		ID:         fmt.Sprintf("DOC-%s-%d", clientTag(c.Name), time.Now().UnixMilli()),
		Name:       docName,
		Type:       docType,
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}
	c.Docs = append([]Doc{doc}, c.Docs...)
	return doc, nil
}

func (s *InMemoryStore) find(name string) *Client {
	for i := range s.clients {
		if strings.EqualFold(s.clients[i].Name, name) {
			return &s.clients[i]
		}
	}
	return nil
}

func clientTag(name string) string {
	tag := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
	if len(tag) > 3 {
		tag = tag[:3]
	}
	return tag
}

func seedClients(now time.Time) []Client {
	return []Client{
		{
			Name:       "SunCoast Super",
			Type:       "Pension",
			Domicile:   "AU",
			Owner:      "You",
			SLA:        "Monthly",
			AUMAud:     4_200_000_000,
			FeeBps:     28,
			LastReview: "2026-07-11",
			NextReview: "2026-10-15",
			Benchmark:  "S&P/ASX 200 (TR)",
			Strategies: []string{"Australian Equity Core"},
			Contacts: []Contact{
				{Name: "Kara James", Role: "Head of Equities", Email: "kara.james@suncoast.example", Phone: "+61 7 3131 0001"},
				{Name: "Michael Chen", Role: "Investment Ops", Email: "michael.chen@suncoast.example", Phone: "+61 7 3131 0002"},
			},
			Meetings: []Meeting{
				{When: now.Add(5 * 24 * time.Hour), Topic: "Q2 Performance Review", Attendees: []string{"Thomas Francis", "Kara James"}},
			},
			Docs: []Doc{
				{ID: "DOC-SCS-001", Name: "SLA-Monthly-Template.pdf", Type: "PDF", Size: "82 KB", UploadedAt: now.Add(-30 * 24 * time.Hour)},
			},
			Notes: []Note{
				{ID: "N-SCS-1", Timestamp: now.Add(-20 * 24 * time.Hour), User: "thomas.francis@amdesk.example", Text: "Client asked to add factor heatmap in next deck."},
			},
		},
		{
			Name:       "Quill Insurance",
			Type:       "Insurance",
			Domicile:   "AU",
			Owner:      "Coverage",
			SLA:        "Quarterly",
			AUMAud:     2_850_000_000,
			FeeBps:     20,
			LastReview: "2026-06-23",
			NextReview: "2026-09-20",
			Benchmark:  "Custom LDI Composite",
			Strategies: []string{"LDI / Liability-Aware Fixed Income"},
			Contacts: []Contact{
				{Name: "Priya Nair", Role: "ALM Lead", Email: "priya.nair@quill.example", Phone: "+61 2 9999 4401"},
				{Name: "Gavin Wood", Role: "Legal Counsel", Email: "gavin.wood@quill.example", Phone: "+61 2 9999 4402"},
			},
			Meetings: []Meeting{
				{When: now.Add(9 * 24 * time.Hour), Topic: "LDI Constraint Review", Attendees: []string{"Coverage", "Legal", "Quill"}},
			},
			Docs: []Doc{
				{ID: "DOC-QLI-001", Name: "LDI-Spec-v3.pdf", Type: "PDF", Size: "540 KB", UploadedAt: now.Add(-45 * 24 * time.Hour)},
			},
			Notes: []Note{
				{ID: "N-QLI-1", Timestamp: now.Add(-10 * 24 * time.Hour), User: "rfp.apac@amdesk.example", Text: "Fee schedule awaiting final legal sign-off."},
			},
		},
	}
}
