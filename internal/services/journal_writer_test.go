package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/internal/infrastructure/journal"
)

type fakeHealth struct {
	online bool
}

func (f *fakeHealth) IsOnline() bool { return f.online }

type fakeEventStore struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (f *fakeEventStore) Append(ctx context.Context, event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventStore) ListByEffort(ctx context.Context, effortID int64) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Event(nil), f.events...), nil
}

func newWriter(t *testing.T, health *fakeHealth, store *fakeEventStore, maxRetries int) *JournalWriter {
	t.Helper()
	jnl, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"), "journal")
	require.NoError(t, err)
	t.Cleanup(func() { jnl.Close() })

	return NewJournalWriter(jnl, health, store, zap.NewNop(), WriterConfig{
		Interval:   time.Minute,
		BatchSize:  10,
		MaxRetries: maxRetries,
	})
}

func TestJournalWriter_DrainReplaysBufferedEvents(t *testing.T) {
	store := &fakeEventStore{}
	writer := newWriter(t, &fakeHealth{online: true}, store, 5)

	writer.Publish(domain.Event{ID: "evt-1", EffortID: 1, Kind: domain.EventEffortSubmitted})
	writer.Publish(domain.Event{ID: "evt-2", EffortID: 1, Kind: domain.EventEffortCommitted})
	require.Equal(t, 2, writer.Size())

	require.NoError(t, writer.Drain(context.Background()))

	assert.Zero(t, writer.Size())
	require.Len(t, store.events, 2)
	assert.Equal(t, "evt-1", store.events[0].ID)
	assert.Equal(t, "evt-2", store.events[1].ID)
}

func TestJournalWriter_DrainSkipsWhileOffline(t *testing.T) {
	store := &fakeEventStore{}
	health := &fakeHealth{online: false}
	writer := newWriter(t, health, store, 5)

	writer.Publish(domain.Event{ID: "evt-1", Kind: domain.EventEffortSubmitted})
	require.NoError(t, writer.Drain(context.Background()))

	assert.Equal(t, 1, writer.Size())
	assert.Empty(t, store.events)

	// Back online, the buffered entry replays.
	health.online = true
	require.NoError(t, writer.Drain(context.Background()))
	assert.Zero(t, writer.Size())
	assert.Len(t, store.events, 1)
}

func TestJournalWriter_RetriesThenDrops(t *testing.T) {
	store := &fakeEventStore{err: errors.New("store down")}
	writer := newWriter(t, &fakeHealth{online: true}, store, 2)

	writer.Publish(domain.Event{ID: "evt-1", Kind: domain.EventEffortSubmitted})

	// First failed drain requeues with one retry on the clock.
	require.NoError(t, writer.Drain(context.Background()))
	assert.Equal(t, 1, writer.Size())

	// Second failure hits the retry ceiling and drops the entry.
	require.NoError(t, writer.Drain(context.Background()))
	assert.Zero(t, writer.Size())
	assert.Empty(t, store.events)
}
