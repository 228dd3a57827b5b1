package mandate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	dErrors "amdesk/pkg/domain-errors"
	"amdesk/pkg/platform/sentinel"
)

// MandatePatch carries optional mandate fields for updates.
type MandatePatch struct {
	Client    *string    `json:"client"`
	Strategy  *string    `json:"strategy"`
	Benchmark *string    `json:"benchmark"`
	Bands     *RiskBands `json:"bands"`
	KPIs      *KPIs      `json:"kpis"`
}

// NewBreach carries caller-supplied fields for a breach; status is always
// Open on creation.
type NewBreach struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Note     string   `json:"note"`
}

// BreachPatch updates status and/or note. A nil Status leaves the lifecycle
// untouched (note-only update).
type BreachPatch struct {
	Status *BreachStatus `json:"status"`
	Note   *string       `json:"note"`
}

// InMemoryStore is the single source of truth for mandates and their embedded
// breaches.
type InMemoryStore struct {
	mu       sync.RWMutex
	mandates []Mandate
	breachN  int
}

// NewInMemoryStore returns a store seeded with the demo book.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{mandates: seedMandates(time.Now().UTC())}
}

// List returns a copy of all mandates.
func (s *InMemoryStore) List(_ context.Context) []Mandate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMandates(s.mandates)
}

// Get returns the mandate with the given id.
func (s *InMemoryStore) Get(_ context.Context, id string) (Mandate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mandates {
		if m.ID == id {
			return copyMandate(m), nil
		}
	}
	return Mandate{}, sentinel.ErrNotFound
}

// Create adds a new mandate. ID and Client are required.
func (s *InMemoryStore) Create(_ context.Context, m Mandate) (Mandate, error) {
	if m.ID == "" || m.Client == "" {
		return Mandate{}, dErrors.New(dErrors.CodeBadRequest, "Missing id or client")
	}
	if m.Breaches == nil {
		m.Breaches = []Breach{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.mandates {
		if existing.ID == m.ID {
			return Mandate{}, sentinel.ErrConflict
		}
	}
	s.mandates = append(s.mandates, m)
	return copyMandate(m), nil
}

// Update applies the patch to the mandate with the given id.
func (s *InMemoryStore) Update(_ context.Context, id string, patch MandatePatch) (Mandate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.mandates {
		if s.mandates[i].ID != id {
			continue
		}
		m := &s.mandates[i]
		if patch.Client != nil {
			m.Client = *patch.Client
		}
		if patch.Strategy != nil {
			m.Strategy = *patch.Strategy
		}
		if patch.Benchmark != nil {
			m.Benchmark = *patch.Benchmark
		}
		if patch.Bands != nil {
			m.Bands = *patch.Bands
		}
		if patch.KPIs != nil {
			m.KPIs = *patch.KPIs
		}
		return copyMandate(*m), nil
	}
	return Mandate{}, sentinel.ErrNotFound
}

// Delete removes a mandate and its breaches.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.mandates {
		if s.mandates[i].ID == id {
			s.mandates = append(s.mandates[:i], s.mandates[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// BreachesForMandate returns the embedded breach list of one mandate.
func (s *InMemoryStore) BreachesForMandate(ctx context.Context, mandateID string) ([]Breach, error) {
	m, err := s.Get(ctx, mandateID)
	if err != nil {
		return nil, err
	}
	return m.Breaches, nil
}

// AddBreach records a new breach against a mandate with status Open.
func (s *InMemoryStore) AddBreach(_ context.Context, mandateID string, nb NewBreach) (Breach, error) {
	if nb.Type == "" {
		return Breach{}, dErrors.New(dErrors.CodeBadRequest, "Missing breach type")
	}
	if nb.Severity == "" {
		nb.Severity = SeverityLow
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.mandates {
		if s.mandates[i].ID != mandateID {
			continue
		}
		id := nb.ID
		if id == "" {
			s.breachN++
			id = fmt.Sprintf("BR-%s-%03d", shortClientTag(s.mandates[i].Client), s.breachN)
		}
		b := Breach{
			ID:       id,
			Type:     nb.Type,
			Severity: nb.Severity,
			Status:   StatusOpen,
			Opened:   time.Now().UTC(),
			Note:     nb.Note,
		}
		s.mandates[i].Breaches = append(s.mandates[i].Breaches, b)
		return b, nil
	}
	return Breach{}, sentinel.ErrNotFound
}

// UpdateBreach patches the breach's note and moves its status through the
// legal lifecycle. Illegal transitions are rejected without mutating state.
func (s *InMemoryStore) UpdateBreach(_ context.Context, mandateID, breachID string, patch BreachPatch) (Breach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.mandates {
		if s.mandates[i].ID != mandateID {
			continue
		}
		for j := range s.mandates[i].Breaches {
			b := &s.mandates[i].Breaches[j]
			if b.ID != breachID {
				continue
			}
			if patch.Status != nil {
				next := *patch.Status
				if !next.Valid() {
					return Breach{}, dErrors.New(dErrors.CodeBadRequest,
						fmt.Sprintf("Unknown breach status %q", next))
				}
				if !b.Status.CanTransitionTo(next) {
					return Breach{}, dErrors.New(dErrors.CodeBadRequest,
						fmt.Sprintf("Illegal breach transition %s -> %s", b.Status, next))
				}
				b.Status = next
				if next == StatusResolved {
					now := time.Now().UTC()
					b.Resolved = &now
				}
			}
			if patch.Note != nil {
				b.Note = *patch.Note
			}
			return *b, nil
		}
		return Breach{}, sentinel.ErrNotFound
	}
	return Breach{}, sentinel.ErrNotFound
}

// Breaches flattens every mandate's breach list into independent records with
// mandate context, optionally filtered by exact status, sorted by opened
// timestamp descending. Ties keep the (mandate, breach) encounter order. Pure
// read; never mutates the underlying records.
func (s *InMemoryStore) Breaches(_ context.Context, status BreachStatus) []FlatBreach {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flat := []FlatBreach{}
	for _, m := range s.mandates {
		for _, b := range m.Breaches {
			if status != "" && b.Status != status {
				continue
			}
			flat = append(flat, FlatBreach{
				ID:        b.ID,
				MandateID: m.ID,
				Client:    m.Client,
				Type:      b.Type,
				Severity:  b.Severity,
				Status:    b.Status,
				Opened:    b.Opened,
				Resolved:  b.Resolved,
				Note:      b.Note,
			})
		}
	}
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].Opened.After(flat[j].Opened)
	})
	return flat
}

func copyMandates(in []Mandate) []Mandate {
	out := make([]Mandate, len(in))
	for i, m := range in {
		out[i] = copyMandate(m)
	}
	return out
}

func copyMandate(m Mandate) Mandate {
	m.Breaches = append([]Breach{}, m.Breaches...)
	return m
}

func shortClientTag(client string) string {
	tag := strings.ToUpper(strings.ReplaceAll(client, " ", ""))
	if len(tag) > 3 {
		tag = tag[:3]
	}
	return tag
}

func daysAgo(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

func seedMandates(now time.Time) []Mandate {
	resolved := daysAgo(now, 15)
	return []Mandate{
		{
			ID:        "M-AUS-EQ-SCS-001",
			Client:    "SunCoast Super",
			Strategy:  "Australian Equity Core",
			Benchmark: "S&P/ASX 200 (TR)",
			Bands:     RiskBands{TrackingErrorBps: []int{0, 250}},
			KPIs:      KPIs{YTDReturnPct: 4.7, TrackingErrorBps: 310},
			Breaches: []Breach{
				{
					ID:       "BR-SCS-001",
					Type:     "Tracking Error",
					Severity: SeverityCritical,
					Status:   StatusOpen,
					Opened:   daysAgo(now, 2),
					Note:     "TE exceeded +200 bps band vs benchmark.",
				},
			},
		},
		{
			ID:        "M-AU-BOND-QLI-001",
			Client:    "Quill Insurance",
			Strategy:  "AU Core Bond",
			Benchmark: "Bloomberg AusBond Composite",
			Bands:     RiskBands{IssuerConcentrationPct: 8},
			KPIs:      KPIs{YTDReturnPct: 2.3},
			Breaches: []Breach{
				{
					ID:       "BR-QLI-002",
					Type:     "Concentration",
					Severity: SeverityMedium,
					Status:   StatusOpen,
					Opened:   daysAgo(now, 6),
					Note:     "Single issuer exposure reached alert level.",
				},
				{
					ID:       "BR-QLI-001",
					Type:     "Liquidity",
					Severity: SeverityLow,
					Status:   StatusResolved,
					Opened:   daysAgo(now, 18),
					Resolved: &resolved,
					Note:     "Small off-benchmark line hit liquidity tripwire.",
				},
			},
		},
	}
}
