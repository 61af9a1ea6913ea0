package domain

import "time"

// EffortState is the lifecycle position derived from an Effort's fields.
type EffortState string

const (
	EffortProposed         EffortState = "proposed"
	EffortCommitted        EffortState = "committed"
	EffortCompletionMarked EffortState = "completion_marked"
	EffortApproved         EffortState = "approved"
	EffortAutoFailed       EffortState = "auto_failed"
	EffortDeadlineFailed   EffortState = "deadline_failed"
)

// Resolution values recorded exactly once, when an Effort concludes.
const (
	ResolutionApproved       = "approved"
	ResolutionAutoFailed     = "auto_failed"
	ResolutionDeadlineFailed = "deadline_failed"
)

// Effort is a proposer-funded, performer-executed task with an escrowed
// deposit and an accountability deadline. Identity fields (ID, the two
// handles) never change after creation; the deposit drops to zero exactly
// once, when the record concludes.
type Effort struct {
	ID                   int64      `json:"id"`
	ProposerHandle       string     `json:"proposer_handle"`
	PerformerHandle      string     `json:"performer_handle"`
	DepositCents         int64      `json:"deposit_cents"`
	DurationDays         int        `json:"duration_days"`
	PendingDurationDays  *int       `json:"pending_duration_days,omitempty"`
	Committed            bool       `json:"committed"`
	CommitmentAcceptedAt *time.Time `json:"commitment_accepted_at,omitempty"`
	CompletionMarked     bool       `json:"completion_marked"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	Concluded            bool       `json:"concluded"`
	Resolution           string     `json:"resolution,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// State derives the lifecycle state from the record's fields.
func (e *Effort) State() EffortState {
	switch {
	case e == nil:
		return EffortProposed
	case e.Concluded:
		switch e.Resolution {
		case ResolutionAutoFailed:
			return EffortAutoFailed
		case ResolutionDeadlineFailed:
			return EffortDeadlineFailed
		default:
			return EffortApproved
		}
	case e.CompletionMarked:
		return EffortCompletionMarked
	case e.Committed:
		return EffortCommitted
	default:
		return EffortProposed
	}
}

// Deadline returns the completion deadline. Only meaningful once committed.
func (e *Effort) Deadline() time.Time {
	if e == nil || e.CommitmentAcceptedAt == nil {
		return time.Time{}
	}
	return e.CommitmentAcceptedAt.Add(time.Duration(e.DurationDays) * 24 * time.Hour)
}

// ConfirmDeadline returns the end of the approval grace window.
// Only meaningful once completion is marked.
func (e *Effort) ConfirmDeadline(window time.Duration) time.Time {
	if e == nil || e.CompletedAt == nil {
		return time.Time{}
	}
	return e.CompletedAt.Add(window)
}

func (e *Effort) IsProposer(handle string) bool {
	return e != nil && handle != "" && e.ProposerHandle == handle
}

func (e *Effort) IsPerformer(handle string) bool {
	return e != nil && handle != "" && e.PerformerHandle == handle
}

// Clone returns a copy so callers can stage mutations and roll back.
func (e *Effort) Clone() *Effort {
	if e == nil {
		return nil
	}
	out := *e
	if e.PendingDurationDays != nil {
		v := *e.PendingDurationDays
		out.PendingDurationDays = &v
	}
	if e.CommitmentAcceptedAt != nil {
		v := *e.CommitmentAcceptedAt
		out.CommitmentAcceptedAt = &v
	}
	if e.CompletedAt != nil {
		v := *e.CompletedAt
		out.CompletedAt = &v
	}
	return &out
}
