package domain

import "time"

// Member is a membership record resolved from an external address.
// Each address holds at most one handle.
type Member struct {
	Handle        string    `json:"handle"`
	Address       string    `json:"address"`
	Status        string    `json:"status"`
	BalanceCents  int64     `json:"balance_cents"`
	PenaltyCents  int64     `json:"penalty_cents"`
	PaidThrough   time.Time `json:"paid_through"`
	LastAccruedAt time.Time `json:"last_accrued_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsActive reports whether the member may take on commitments at the given
// instant: in good standing, no outstanding penalty, subscription current.
func (m *Member) IsActive(reference time.Time) bool {
	if m == nil || m.Status != "active" {
		return false
	}
	if m.PenaltyCents > 0 {
		return false
	}
	return !reference.After(m.PaidThrough)
}
