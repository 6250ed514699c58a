package worker

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CommitFn performs the real backend delete for a staged deletion. It is
// invoked at most once per deletion, from the countdown timer or from an
// explicit dismiss, never from an undo.
type CommitFn func(agreementID uuid.UUID) error

// PendingDeletion is an agreement removed from the visible list but not yet
// deleted from the database. It lives only in memory for the duration of the
// undo window.
type PendingDeletion struct {
	ID          uuid.UUID   `json:"id"`
	AgreementID uuid.UUID   `json:"agreement_id"`
	Snapshot    interface{} `json:"snapshot"`
	Index       int         `json:"index"`
	StartedAt   time.Time   `json:"started_at"`

	seq   uint64
	timer *time.Timer
}

// UndoManager owns the pending-deletion set. Each staged deletion gets an
// independent countdown keyed by its deletion id; undo and timeout/dismiss
// for the same id are mutually exclusive, first to remove the entry wins and
// the loser is a no-op.
type UndoManager struct {
	mu      sync.Mutex
	window  time.Duration
	commit  CommitFn
	logger  *log.Logger
	pending map[uuid.UUID]*PendingDeletion
	nextSeq uint64
	stopped bool
}

func NewUndoManager(window time.Duration, commit CommitFn, logger *log.Logger) *UndoManager {
	return &UndoManager{
		window:  window,
		commit:  commit,
		logger:  logger,
		pending: make(map[uuid.UUID]*PendingDeletion),
	}
}

// Window returns the configured undo window.
func (m *UndoManager) Window() time.Duration {
	return m.window
}

// Stage registers a deletion and arms its countdown. The snapshot and index
// are handed back on undo so the caller can restore the entry at its original
// list position.
func (m *UndoManager) Stage(agreementID uuid.UUID, snapshot interface{}, index int) *PendingDeletion {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil
	}

	pd := &PendingDeletion{
		ID:          uuid.New(),
		AgreementID: agreementID,
		Snapshot:    snapshot,
		Index:       index,
		StartedAt:   time.Now(),
		seq:         m.nextSeq,
	}
	m.nextSeq++
	m.pending[pd.ID] = pd

	deletionID := pd.ID
	pd.timer = time.AfterFunc(m.window, func() {
		m.expire(deletionID)
	})

	return pd
}

// expire is the timeout path: commit the delete if the entry is still
// pending. If it was undone or dismissed in the meantime this is a no-op.
func (m *UndoManager) expire(deletionID uuid.UUID) {
	pd, ok := m.take(deletionID)
	if !ok {
		return
	}
	if err := m.commit(pd.AgreementID); err != nil {
		m.logger.Printf("Failed to commit expired deletion %s (agreement %s): %v",
			pd.ID, pd.AgreementID, err)
		return
	}
	m.logger.Printf("Deletion %s committed after timeout (agreement %s)", pd.ID, pd.AgreementID)
}

// Undo cancels a pending deletion and returns its snapshot. No backend call
// is made; nothing was ever sent.
func (m *UndoManager) Undo(deletionID uuid.UUID) (*PendingDeletion, bool) {
	return m.take(deletionID)
}

// Dismiss commits a pending deletion immediately instead of waiting for the
// countdown.
func (m *UndoManager) Dismiss(deletionID uuid.UUID) (*PendingDeletion, bool, error) {
	pd, ok := m.take(deletionID)
	if !ok {
		return nil, false, nil
	}
	if err := m.commit(pd.AgreementID); err != nil {
		return pd, true, err
	}
	return pd, true, nil
}

// take removes and returns the entry, stopping its timer. Removal under the
// lock is what makes undo and timeout mutually exclusive.
func (m *UndoManager) take(deletionID uuid.UUID) (*PendingDeletion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pd, ok := m.pending[deletionID]
	if !ok {
		return nil, false
	}
	delete(m.pending, deletionID)
	pd.timer.Stop()
	return pd, true
}

// Pending returns the staged deletions in creation order.
func (m *UndoManager) Pending() []*PendingDeletion {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*PendingDeletion, 0, len(m.pending))
	for _, pd := range m.pending {
		out = append(out, pd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// PendingAgreementIDs lists the agreements currently hidden from the visible
// list.
func (m *UndoManager) PendingAgreementIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(m.pending))
	for _, pd := range m.pending {
		ids = append(ids, pd.AgreementID)
	}
	return ids
}

// Remaining reports the time left on a countdown, derived from elapsed time
// since staging rather than a decrementing counter.
func (m *UndoManager) Remaining(deletionID uuid.UUID) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pd, ok := m.pending[deletionID]
	if !ok {
		return 0, false
	}
	remaining := m.window - time.Since(pd.StartedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Stop cancels all outstanding countdowns without committing them. Staged
// deletions are abandoned; the agreements reappear on the next load since the
// backend was never touched.
func (m *UndoManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	for id, pd := range m.pending {
		pd.timer.Stop()
		delete(m.pending, id)
	}
}
