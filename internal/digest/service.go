package digest

import (
	"context"
	"log/slog"

	"amdesk/internal/approval"
	"amdesk/internal/mandate"
	"amdesk/internal/platform/metrics"
	"amdesk/internal/rfp"
	"amdesk/internal/user"
)

// Directory provides the user snapshot for a run, read fresh each time.
type Directory interface {
	List(ctx context.Context) ([]user.User, error)
}

// RFPSource provides current RFPs.
type RFPSource interface {
	List(ctx context.Context) ([]rfp.RFP, error)
}

// ApprovalSource provides current approvals.
type ApprovalSource interface {
	List(ctx context.Context) ([]approval.Approval, error)
}

// BreachSource provides the flattened breach view.
type BreachSource interface {
	Breaches(ctx context.Context, status mandate.BreachStatus) []mandate.FlatBreach
}

// RunResult reports what a digest run produced.
type RunResult struct {
	Generated int      `json:"generated"`
	DigestIDs []string `json:"digests"`
}

// Service drives digest runs: gather current snapshots, build one digest per
// opted-in user, persist each. Re-running appends new digest records; runs
// are not deduplicated.
type Service struct {
	directory Directory
	rfps      RFPSource
	approvals ApprovalSource
	breaches  BreachSource
	store     Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(
	directory Directory,
	rfps RFPSource,
	approvals ApprovalSource,
	breaches BreachSource,
	store Store,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		directory: directory,
		rfps:      rfps,
		approvals: approvals,
		breaches:  breaches,
		store:     store,
		logger:    logger,
		metrics:   m,
	}
}

// Run generates digests for every user whose emailDigest preference is not
// "none". Upstream read failures degrade to empty sections so the run still
// completes; mode is recorded for the caller but both daily and weekly
// recipients are included on every run in this system.
func (s *Service) Run(ctx context.Context, mode string) (RunResult, error) {
	users, err := s.directory.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "user directory unavailable, digest run produces nothing", "error", err)
		return RunResult{DigestIDs: []string{}}, nil
	}

	rfps, err := s.rfps.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "rfp source unavailable, digest section empty", "error", err)
		rfps = nil
	}
	approvals, err := s.approvals.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "approval source unavailable, digest section empty", "error", err)
		approvals = nil
	}
	breaches := s.breaches.Breaches(ctx, mandate.StatusOpen)

	items := Items{
		RFPsCount:      len(rfps),
		ApprovalsCount: len(approvals),
		BreachesCount:  len(breaches),
	}

	result := RunResult{DigestIDs: []string{}}
	for _, u := range users {
		if !u.WantsDigest() {
			continue
		}

		subject, bodyHTML := Build(BuildInput{
			User:      u,
			RFPs:      rfps,
			Approvals: approvals,
			Breaches:  breaches,
		})

		rec, err := s.store.Write(ctx, New{
			To:       u.Email,
			Subject:  subject,
			BodyHTML: bodyHTML,
			Items:    items,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to persist digest",
				"to", u.Email,
				"mode", mode,
				"error", err,
			)
			continue
		}
		s.metrics.DigestsGenerated.Inc()
		result.Generated++
		result.DigestIDs = append(result.DigestIDs, rec.ID)
	}
	return result, nil
}
