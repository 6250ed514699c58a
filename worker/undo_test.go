package worker

import (
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commitRecorder is a CommitFn that counts calls per agreement.
type commitRecorder struct {
	mu    sync.Mutex
	calls map[uuid.UUID]int
}

func newCommitRecorder() *commitRecorder {
	return &commitRecorder{calls: make(map[uuid.UUID]int)}
}

func (r *commitRecorder) fn(agreementID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[agreementID]++
	return nil
}

func (r *commitRecorder) count(agreementID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[agreementID]
}

func (r *commitRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.calls {
		total += n
	}
	return total
}

func newTestManager(window time.Duration, rec *commitRecorder) *UndoManager {
	return NewUndoManager(window, rec.fn, log.New(os.Stdout, "UNDO-TEST: ", log.LstdFlags))
}

func TestUndoCancelsCommit(t *testing.T) {
	rec := newCommitRecorder()
	m := newTestManager(30*time.Millisecond, rec)
	defer m.Stop()

	agreementID := uuid.New()
	pd := m.Stage(agreementID, "snapshot", 2)
	require.NotNil(t, pd)
	assert.Equal(t, 2, pd.Index)
	assert.Equal(t, agreementID, pd.AgreementID)

	restored, ok := m.Undo(pd.ID)
	require.True(t, ok)
	assert.Equal(t, "snapshot", restored.Snapshot)
	assert.Equal(t, 2, restored.Index)

	// Wait past the window; the stopped timer must not fire the commit
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, rec.count(agreementID))
}

func TestTimeoutCommitsExactlyOnce(t *testing.T) {
	rec := newCommitRecorder()
	m := newTestManager(20*time.Millisecond, rec)
	defer m.Stop()

	agreementID := uuid.New()
	pd := m.Stage(agreementID, nil, 0)
	require.NotNil(t, pd)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, rec.count(agreementID))

	// The entry is gone; a late undo is a no-op
	_, ok := m.Undo(pd.ID)
	assert.False(t, ok)
	assert.Empty(t, m.Pending())
}

func TestDismissCommitsImmediately(t *testing.T) {
	rec := newCommitRecorder()
	m := newTestManager(time.Hour, rec)
	defer m.Stop()

	agreementID := uuid.New()
	pd := m.Stage(agreementID, nil, 0)
	require.NotNil(t, pd)

	_, ok, err := m.Dismiss(pd.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, rec.count(agreementID))

	// Dismiss consumed the entry; the timer path cannot double-commit
	_, ok, err = m.Dismiss(pd.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, rec.count(agreementID))
}

func TestStagedDeletionsAreIndependent(t *testing.T) {
	rec := newCommitRecorder()
	m := newTestManager(25*time.Millisecond, rec)
	defer m.Stop()

	first := uuid.New()
	second := uuid.New()
	pdFirst := m.Stage(first, nil, 0)
	m.Stage(second, nil, 1)

	// Undoing the first must not disturb the second's countdown
	_, ok := m.Undo(pdFirst.ID)
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, rec.count(first))
	assert.Equal(t, 1, rec.count(second))
}

func TestPendingOrderedByCreation(t *testing.T) {
	rec := newCommitRecorder()
	m := newTestManager(time.Hour, rec)
	defer m.Stop()

	a := m.Stage(uuid.New(), nil, 0)
	b := m.Stage(uuid.New(), nil, 1)
	c := m.Stage(uuid.New(), nil, 2)

	pending := m.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, a.ID, pending[0].ID)
	assert.Equal(t, b.ID, pending[1].ID)
	assert.Equal(t, c.ID, pending[2].ID)

	ids := m.PendingAgreementIDs()
	assert.Len(t, ids, 3)
}

func TestRemaining(t *testing.T) {
	rec := newCommitRecorder()
	m := newTestManager(time.Hour, rec)
	defer m.Stop()

	pd := m.Stage(uuid.New(), nil, 0)
	remaining, ok := m.Remaining(pd.ID)
	require.True(t, ok)
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)

	_, ok = m.Remaining(uuid.New())
	assert.False(t, ok)
}

func TestStopAbandonsWithoutCommitting(t *testing.T) {
	rec := newCommitRecorder()
	m := newTestManager(20*time.Millisecond, rec)

	m.Stage(uuid.New(), nil, 0)
	m.Stage(uuid.New(), nil, 1)
	m.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, rec.total())

	// Staging after stop is refused
	assert.Nil(t, m.Stage(uuid.New(), nil, 0))
}
