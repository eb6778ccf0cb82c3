package service

import (
	"fmt"
	"sync"
	"time"

	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
	"vendorledger/pkg/apperror"
)

// ChangeLog is the ordered queue of local mutations awaiting propagation to
// the remote store. Entries are appended at the tail, drained strictly from
// the head, and never merged — three updates to one record stay three
// entries. The full sequence is persisted on every mutation.
type ChangeLog struct {
	mu      sync.Mutex
	entries []domain.ChangeEntry
	store   ports.SnapshotStore
}

// NewChangeLog loads the pending entries from the snapshot store.
func NewChangeLog(store ports.SnapshotStore) (*ChangeLog, error) {
	entries, err := store.LoadChangeLog()
	if err != nil {
		return nil, fmt.Errorf("loading change log: %w", err)
	}
	return &ChangeLog{entries: entries, store: store}, nil
}

// Append records one mutation at the tail and persists the sequence.
// data is nil for deletes.
func (l *ChangeLog) Append(action domain.ChangeAction, kind domain.Kind, data domain.Record, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, domain.ChangeEntry{
		Timestamp: time.Now().UTC(),
		Action:    action,
		Resource:  kind,
		Data:      data,
		ID:        id,
	})
	if err := l.store.SaveChangeLog(l.entries); err != nil {
		return apperror.ErrPersistence(fmt.Errorf("saving change log: %w", err))
	}
	return nil
}

// PeekHead returns the oldest pending entry without removing it.
func (l *ChangeLog) PeekHead() (domain.ChangeEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return domain.ChangeEntry{}, false
	}
	return l.entries[0], true
}

// PopHead drops the head entry after its confirmed remote application and
// persists the shortened sequence.
func (l *ChangeLog) PopHead() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return nil
	}
	l.entries = l.entries[1:]
	if err := l.store.SaveChangeLog(l.entries); err != nil {
		return apperror.ErrPersistence(fmt.Errorf("saving change log: %w", err))
	}
	return nil
}

// Snapshot returns a read-only copy of the pending entries, in order.
func (l *ChangeLog) Snapshot() []domain.ChangeEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.ChangeEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of pending entries.
func (l *ChangeLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
