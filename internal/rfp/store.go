package rfp

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"amdesk/internal/platform/jsonfile"
	dErrors "amdesk/pkg/domain-errors"
	"amdesk/pkg/platform/sentinel"
)

// Filter narrows List output. Zero values match everything.
type Filter struct {
	Stage  string
	Client string
	Query  string
}

// NewRFP carries the fields callers supply at creation.
type NewRFP struct {
	ID     string `json:"id"`
	Client string `json:"client"`
	Title  string `json:"title"`
	Owner  string `json:"owner"`
	Due    string `json:"due"`
}

// Patch carries optional fields for a general update. Stage changes go
// through SetStage so the allowed-stage check and event emission stay in one
// place.
type Patch struct {
	Client *string `json:"client"`
	Title  *string `json:"title"`
	Owner  *string `json:"owner"`
	Due    *string `json:"due"`
}

const maxNoteLen = 2000

// FileStore is the JSON-file-backed RFP collection.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens the collection at path, writing seed data when the file
// does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := jsonfile.Write(path, seedRFPs(time.Now().UTC())); err != nil {
			return nil, fmt.Errorf("seed rfps: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) load() ([]RFP, error) {
	return jsonfile.Read[[]RFP](s.path)
}

// List returns RFPs matching the filter, ascending by due date string.
func (s *FileStore) List(ctx context.Context) ([]RFP, error) {
	return s.ListFiltered(ctx, Filter{})
}

// ListFiltered applies stage (exact, case-insensitive), client (substring)
// and free-text filters.
func (s *FileStore) ListFiltered(_ context.Context, f Filter) ([]RFP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rfps, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]RFP, 0, len(rfps))
	for _, r := range rfps {
		if f.Stage != "" && !strings.EqualFold(r.Stage, f.Stage) {
			continue
		}
		if f.Client != "" && !strings.Contains(strings.ToLower(r.Client), strings.ToLower(f.Client)) {
			continue
		}
		if f.Query != "" {
			haystack := strings.ToLower(r.ID + " " + r.Title)
			if !strings.Contains(haystack, strings.ToLower(f.Query)) {
				continue
			}
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due < out[j].Due })
	return out, nil
}

// Get returns one RFP by id.
func (s *FileStore) Get(_ context.Context, id string) (RFP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rfps, err := s.load()
	if err != nil {
		return RFP{}, err
	}
	for _, r := range rfps {
		if r.ID == id {
			return r, nil
		}
	}
	return RFP{}, sentinel.ErrNotFound
}

// Create adds a new RFP in stage Draft.
func (s *FileStore) Create(_ context.Context, n NewRFP) (RFP, error) {
	if n.ID == "" || n.Client == "" || n.Title == "" {
		return RFP{}, dErrors.New(dErrors.CodeBadRequest, "Missing id, client, or title")
	}
	if n.Owner == "" {
		n.Owner = "You"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rfps, err := s.load()
	if err != nil {
		return RFP{}, err
	}
	for _, existing := range rfps {
		if existing.ID == n.ID {
			return RFP{}, sentinel.ErrConflict
		}
	}
	r := RFP{
		ID:          n.ID,
		Client:      n.Client,
		Title:       n.Title,
		Stage:       "Draft",
		Owner:       n.Owner,
		Due:         n.Due,
		LastUpdated: time.Now().UTC(),
		Notes:       []Note{},
		Checklist:   []ChecklistItem{},
		Attachments: []Attachment{},
	}
	rfps = append([]RFP{r}, rfps...)
	if err := jsonfile.Write(s.path, rfps); err != nil {
		return RFP{}, err
	}
	return r, nil
}

// Update applies the patch to the RFP with the given id.
func (s *FileStore) Update(_ context.Context, id string, patch Patch) (RFP, error) {
	return s.mutate(id, func(r *RFP) error {
		if patch.Client != nil {
			r.Client = *patch.Client
		}
		if patch.Title != nil {
			r.Title = *patch.Title
		}
		if patch.Owner != nil {
			r.Owner = *patch.Owner
		}
		if patch.Due != nil {
			r.Due = *patch.Due
		}
		return nil
	})
}

// SetStage moves the RFP to a new pipeline stage.
func (s *FileStore) SetStage(_ context.Context, id, stage string) (RFP, error) {
	if !ValidStage(stage) {
		return RFP{}, dErrors.New(dErrors.CodeBadRequest, "Invalid stage")
	}
	return s.mutate(id, func(r *RFP) error {
		r.Stage = stage
		return nil
	})
}

// AddNote prepends a note.
func (s *FileStore) AddNote(_ context.Context, id, author, text string) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, dErrors.New(dErrors.CodeBadRequest, "Missing note text")
	}
	if len(text) > maxNoteLen {
		text = text[:maxNoteLen]
	}
	note := Note{Timestamp: time.Now().UTC(), User: author, Text: text}
	_, err := s.mutate(id, func(r *RFP) error {
		r.Notes = append([]Note{note}, r.Notes...)
		return nil
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// SetChecklistItem upserts a checklist entry and returns the full checklist.
func (s *FileStore) SetChecklistItem(_ context.Context, id, key string, done bool) ([]ChecklistItem, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Missing key or done")
	}
	r, err := s.mutate(id, func(r *RFP) error {
		for i := range r.Checklist {
			if r.Checklist[i].Key == key {
				r.Checklist[i].Done = done
				return nil
			}
		}
		r.Checklist = append(r.Checklist, ChecklistItem{Key: key, Done: done})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Checklist, nil
}

// AddAttachment records uploaded document metadata.
func (s *FileStore) AddAttachment(_ context.Context, id, name, docType, size string) (Attachment, error) {
	if name == "" {
		return Attachment{}, dErrors.New(dErrors.CodeBadRequest, "Missing attachment name")
	}
	if docType == "" {
		docType = "PDF"
	}
	if size == "" {
		size = "0 KB"
	}
	att := Attachment{Name: name, Type: docType, Size: size, UploadedAt: time.Now().UTC()}
	_, err := s.mutate(id, func(r *RFP) error {
		r.Attachments = append(r.Attachments, att)
		return nil
	})
	if err != nil {
		return Attachment{}, err
	}
	return att, nil
}

func (s *FileStore) mutate(id string, fn func(*RFP) error) (RFP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rfps, err := s.load()
	if err != nil {
		return RFP{}, err
	}
	for i := range rfps {
		if rfps[i].ID != id {
			continue
		}
		if err := fn(&rfps[i]); err != nil {
			return RFP{}, err
		}
		rfps[i].LastUpdated = time.Now().UTC()
		if err := jsonfile.Write(s.path, rfps); err != nil {
			return RFP{}, err
		}
		return rfps[i], nil
	}
	return RFP{}, sentinel.ErrNotFound
}

func seedRFPs(now time.Time) []RFP {
	due := func(days int) string {
		return now.Add(time.Duration(days) * 24 * time.Hour).Format("2006-01-02")
	}
	return []RFP{
		{
			ID:          "RFP-SCS-24Q3",
			Client:      "SunCoast Super",
			Title:       "Australian Equity Core - Renew",
			Stage:       "Draft",
			Owner:       "You",
			Due:         due(4),
			LastUpdated: now,
			Notes: []Note{
				{Timestamp: now, User: "You", Text: "Initial outline complete."},
			},
			Checklist: []ChecklistItem{
				{Key: "Team bios updated", Done: true},
				{Key: "Track record appendix", Done: true},
				{Key: "Fee schedule review", Done: false},
			},
			Attachments: []Attachment{
				{Name: "RFP-Questionnaire.docx", Type: "DOCX", Size: "312 KB", UploadedAt: now},
			},
		},
		{
			ID:          "RFP-QLI-ALPHA",
			Client:      "Quill Insurance",
			Title:       "Alpha Overlay Proposal",
			Stage:       "Internal Review",
			Owner:       "Coverage",
			Due:         due(10),
			LastUpdated: now,
			Notes:       []Note{},
			Checklist: []ChecklistItem{
				{Key: "Risk backtest section", Done: false},
				{Key: "Compliance statement", Done: false},
			},
			Attachments: []Attachment{},
		},
	}
}
