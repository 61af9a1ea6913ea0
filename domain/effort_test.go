package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffortState(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		effort *Effort
		want   EffortState
	}{
		{"nil record", nil, EffortProposed},
		{"fresh proposal", &Effort{}, EffortProposed},
		{"committed", &Effort{Committed: true, CommitmentAcceptedAt: &now}, EffortCommitted},
		{"completion marked", &Effort{Committed: true, CompletionMarked: true}, EffortCompletionMarked},
		{"approved", &Effort{Concluded: true, Resolution: ResolutionApproved}, EffortApproved},
		{"auto failed", &Effort{Concluded: true, Resolution: ResolutionAutoFailed}, EffortAutoFailed},
		{"deadline failed", &Effort{Concluded: true, Resolution: ResolutionDeadlineFailed}, EffortDeadlineFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.effort.State())
		})
	}
}

func TestEffortDeadlines(t *testing.T) {
	accepted := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	marked := accepted.Add(10 * 24 * time.Hour)

	e := &Effort{
		DurationDays:         14,
		Committed:            true,
		CommitmentAcceptedAt: &accepted,
		CompletionMarked:     true,
		CompletedAt:          &marked,
	}

	assert.Equal(t, accepted.Add(14*24*time.Hour), e.Deadline())
	assert.Equal(t, marked.Add(72*time.Hour), e.ConfirmDeadline(72*time.Hour))

	// Deadlines are undefined before the clock-starting transition.
	assert.True(t, (&Effort{DurationDays: 14}).Deadline().IsZero())
	assert.True(t, (&Effort{}).ConfirmDeadline(72*time.Hour).IsZero())
}

func TestEffortRoles(t *testing.T) {
	e := &Effort{ProposerHandle: "alice", PerformerHandle: "bob"}

	assert.True(t, e.IsProposer("alice"))
	assert.False(t, e.IsProposer("bob"))
	assert.True(t, e.IsPerformer("bob"))
	assert.False(t, e.IsPerformer("alice"))
	assert.False(t, e.IsProposer(""))
	assert.False(t, e.IsPerformer(""))
}

func TestEffortClone(t *testing.T) {
	days := 20
	accepted := time.Now()
	original := &Effort{
		ID:                   7,
		DepositCents:         5000,
		DurationDays:         14,
		PendingDurationDays:  &days,
		Committed:            true,
		CommitmentAcceptedAt: &accepted,
	}

	clone := original.Clone()
	*clone.PendingDurationDays = 99
	clone.DepositCents = 0

	assert.Equal(t, 20, *original.PendingDurationDays)
	assert.Equal(t, int64(5000), original.DepositCents)
}
