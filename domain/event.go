package domain

import "time"

// Event kinds, one per ledger transition.
const (
	EventEffortSubmitted      = "effort.submitted"
	EventDurationRequested    = "effort.duration_requested"
	EventDurationApproved     = "effort.duration_approved"
	EventEffortCommitted      = "effort.committed"
	EventCompletionMarked     = "effort.completion_marked"
	EventCompletionApproved   = "effort.completion_approved"
	EventEffortAutoFailed     = "effort.auto_failed"
	EventEffortDeadlineFailed = "effort.deadline_failed"
	EventMemberRegistered     = "member.registered"
	EventSubscriptionPaid     = "member.subscription_paid"
)

// Event is one audit record emitted by a ledger transition.
type Event struct {
	ID           string    `json:"id"`
	EffortID     int64     `json:"effort_id,omitempty"`
	Kind         string    `json:"kind"`
	ActorHandle  string    `json:"actor_handle,omitempty"`
	AmountCents  int64     `json:"amount_cents,omitempty"`
	MatchedCents int64     `json:"matched_cents,omitempty"`
	DurationDays int       `json:"duration_days,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
