package bus

import "time"

// Event type tags carried on the wire and matched by subscribers.
const (
	TypeRFPStage         = "rfp.stage"
	TypeBreachCreate     = "breach.create"
	TypeBreachUpdate     = "breach.update"
	TypeApprovalCreated  = "approval.created"
	TypeApprovalAssigned = "approval.assigned"
)

// Event is a typed dashboard event. Each variant is a concrete struct so
// consumers can type-switch instead of probing free-form payload maps.
type Event interface {
	EventType() string
}

// RFPStageChanged is emitted when an RFP moves to a new pipeline stage.
type RFPStageChanged struct {
	ID    string
	Stage string
}

func (RFPStageChanged) EventType() string { return TypeRFPStage }

// BreachOpened is emitted when a new breach is recorded against a mandate.
type BreachOpened struct {
	MandateID string
	BreachID  string
	Status    string
}

func (BreachOpened) EventType() string { return TypeBreachCreate }

// BreachUpdated is emitted when an existing breach changes status or note.
type BreachUpdated struct {
	MandateID string
	BreachID  string
	Status    string
}

func (BreachUpdated) EventType() string { return TypeBreachUpdate }

// ApprovalCreated is emitted when a new approval request enters the queue.
type ApprovalCreated struct {
	ID      string
	Summary string
}

func (ApprovalCreated) EventType() string { return TypeApprovalCreated }

// ApprovalAssigned is emitted when an approval is routed to an approver.
type ApprovalAssigned struct {
	ID      string
	Summary string
}

func (ApprovalAssigned) EventType() string { return TypeApprovalAssigned }

// Envelope wraps an event with its type tag and publish time as delivered to
// subscribers.
type Envelope struct {
	Type      string
	Timestamp time.Time
	Event     Event
}
