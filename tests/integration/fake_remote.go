package integration

import (
	"context"
	"fmt"
	"sync"

	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
)

// inMemoryRemote stands in for the spreadsheet store. It replays applied
// changes against per-kind row maps so a pull after a push returns what was
// pushed, and it can be programmed to fail.
type inMemoryRemote struct {
	mu         sync.Mutex
	rows       map[domain.Kind]map[string]domain.Record
	order      map[domain.Kind][]string
	connectErr error
	applyErr   error
	applied    int
}

func newInMemoryRemote() *inMemoryRemote {
	r := &inMemoryRemote{
		rows:  make(map[domain.Kind]map[string]domain.Record),
		order: make(map[domain.Kind][]string),
	}
	for _, k := range domain.Kinds() {
		r.rows[k] = make(map[string]domain.Record)
	}
	return r
}

func (r *inMemoryRemote) Connect(ctx context.Context) (ports.RemoteSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connectErr != nil {
		return nil, r.connectErr
	}
	return (*inMemorySession)(r), nil
}

func (r *inMemoryRemote) appliedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}

func (r *inMemoryRemote) record(kind domain.Kind, id string) (domain.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[kind][id]
	return rec, ok
}

type inMemorySession inMemoryRemote

func (s *inMemorySession) FetchAll(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Record, 0, len(s.order[kind]))
	for _, id := range s.order[kind] {
		if rec, ok := s.rows[kind][id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (s *inMemorySession) Apply(ctx context.Context, entry domain.ChangeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return s.applyErr
	}

	switch entry.Action {
	case domain.ChangeActionCreate:
		s.rows[entry.Resource][entry.ID] = entry.Data.Clone()
		s.order[entry.Resource] = append(s.order[entry.Resource], entry.ID)
	case domain.ChangeActionUpdate:
		// Missing remotely counts as success.
		if _, ok := s.rows[entry.Resource][entry.ID]; ok {
			s.rows[entry.Resource][entry.ID] = entry.Data.Clone()
		}
	case domain.ChangeActionDelete:
		delete(s.rows[entry.Resource], entry.ID)
	default:
		return fmt.Errorf("unknown action %q", entry.Action)
	}
	s.applied++
	return nil
}
