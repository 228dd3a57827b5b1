// Package notifier turns dashboard events into per-user notifications. It is
// a best-effort side channel: failures here never propagate back into the
// business action that published the event.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"amdesk/internal/bus"
	"amdesk/internal/notification"
	"amdesk/internal/platform/metrics"
	"amdesk/internal/user"
)

// Directory provides the current user snapshot. Read fresh on every event so
// preference changes take effect immediately.
type Directory interface {
	List(ctx context.Context) ([]user.User, error)
}

// Store is the notification sink.
type Store interface {
	Add(ctx context.Context, n notification.New) (notification.Notification, error)
}

// Notifier subscribes to the event bus and fans qualifying events out to
// opted-in users.
type Notifier struct {
	directory Directory
	store     Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func New(directory Directory, store Store, logger *slog.Logger, m *metrics.Metrics) *Notifier {
	return &Notifier{
		directory: directory,
		store:     store,
		logger:    logger,
		metrics:   m,
	}
}

// Start subscribes to the bus and returns the unsubscribe func for shutdown.
func (n *Notifier) Start(b *bus.Bus) func() {
	return b.Subscribe(n.Handle)
}

// Handle processes one event. Unknown event types are a deliberate no-op, and
// a failed directory read degrades to an empty fan-out.
func (n *Notifier) Handle(ctx context.Context, evt bus.Envelope) {
	var (
		prefKey  string
		category notification.Category
		title    string
		body     string
		ref      string
	)

	switch e := evt.Event.(type) {
	case bus.RFPStageChanged:
		prefKey = user.PrefRFPStages
		category = notification.CategoryRFP
		title = fmt.Sprintf("RFP stage -> %s", e.Stage)
		body = fmt.Sprintf("RFP %s moved to %s.", e.ID, e.Stage)
		ref = e.ID
	case bus.BreachOpened:
		prefKey = user.PrefBreaches
		category = notification.CategoryBreach
		title = "New Mandate Breach"
		body = breachBody(e.MandateID, e.BreachID, e.Status)
		ref = e.MandateID
	case bus.BreachUpdated:
		prefKey = user.PrefBreaches
		category = notification.CategoryBreach
		title = "Breach Updated"
		body = breachBody(e.MandateID, e.BreachID, e.Status)
		ref = e.MandateID
	case bus.ApprovalCreated:
		prefKey = user.PrefApprovals
		category = notification.CategoryApproval
		title = "New Approval"
		body = fmt.Sprintf("Approval %s %s", e.ID, e.Summary)
		ref = e.ID
	case bus.ApprovalAssigned:
		prefKey = user.PrefApprovals
		category = notification.CategoryApproval
		title = "Approval Assigned"
		body = fmt.Sprintf("Approval %s %s", e.ID, e.Summary)
		ref = e.ID
	default:
		return
	}

	users, err := n.directory.List(ctx)
	if err != nil {
		n.logger.WarnContext(ctx, "user directory unavailable, skipping fan-out",
			"type", evt.Type,
			"error", err,
		)
		return
	}

	for _, u := range users {
		if !u.WantsAlert(prefKey) {
			continue
		}
		// Each creation stands alone: one failed write must not block the
		// remaining recipients.
		_, err := n.store.Add(ctx, notification.New{
			To:    u.Email,
			Type:  category,
			Title: title,
			Body:  body,
			Ref:   ref,
		})
		if err != nil {
			n.logger.ErrorContext(ctx, "failed to write notification",
				"to", u.Email,
				"type", evt.Type,
				"error", err,
			)
			continue
		}
		n.metrics.NotificationsCreated.Inc()
	}
}

func breachBody(mandateID, breachID, status string) string {
	body := fmt.Sprintf("Mandate %s - %s", mandateID, breachID)
	if status != "" {
		body += " -> " + status
	}
	return body
}
