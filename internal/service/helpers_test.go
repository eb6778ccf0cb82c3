package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
	"vendorledger/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ports.SnapshotStore for service tests.
type memStore struct {
	mu        sync.Mutex
	cache     map[domain.Kind][]domain.Record
	changeLog []domain.ChangeEntry
	settings  domain.Settings
	failSaves bool

	cacheSaves    int
	changeSaves   int
	settingsSaves int
}

func newMemStore() *memStore {
	return &memStore{
		cache:    map[domain.Kind][]domain.Record{},
		settings: domain.DefaultSettings(),
	}
}

func (m *memStore) LoadCache() (map[domain.Kind][]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make(map[domain.Kind][]domain.Record, len(domain.Kinds()))
	for _, k := range domain.Kinds() {
		data[k] = append([]domain.Record{}, m.cache[k]...)
	}
	return data, nil
}

func (m *memStore) SaveCache(data map[domain.Kind][]domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return fmt.Errorf("disk full")
	}
	m.cacheSaves++
	m.cache = data
	return nil
}

func (m *memStore) LoadChangeLog() ([]domain.ChangeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ChangeEntry{}, m.changeLog...), nil
}

func (m *memStore) SaveChangeLog(entries []domain.ChangeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return fmt.Errorf("disk full")
	}
	m.changeSaves++
	m.changeLog = append([]domain.ChangeEntry{}, entries...)
	return nil
}

func (m *memStore) LoadSettings() (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.Clone(), nil
}

func (m *memStore) SaveSettings(s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return fmt.Errorf("disk full")
	}
	m.settingsSaves++
	m.settings = s.Clone()
	return nil
}

// fakeRemote is an in-memory ports.RemoteStore that records applied entries
// and can be programmed to fail.
type fakeRemote struct {
	mu          sync.Mutex
	connectErr  error
	applyErrAt  int // fail the Nth Apply call (1-based); 0 = never
	applyCalls  int
	applied     []domain.ChangeEntry
	fetchData   map[domain.Kind][]domain.Record
	fetchErr    error
	connections int
}

func (f *fakeRemote) Connect(ctx context.Context) (ports.RemoteSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.connections++
	return (*fakeSession)(f), nil
}

type fakeSession fakeRemote

func (f *fakeSession) FetchAll(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]domain.Record{}, f.fetchData[kind]...), nil
}

func (f *fakeSession) Apply(ctx context.Context, entry domain.ChangeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls++
	if f.applyErrAt > 0 && f.applyCalls >= f.applyErrAt {
		return fmt.Errorf("remote apply rejected")
	}
	f.applied = append(f.applied, entry)
	return nil
}

func testLogger() zerolog.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func newTestLedger(t *testing.T) (*LedgerServiceImpl, *ChangeLog, *memStore) {
	t.Helper()
	store := newMemStore()
	changes, err := NewChangeLog(store)
	require.NoError(t, err)
	ledger, err := NewLedgerService(store, changes, testLogger())
	require.NoError(t, err)
	return ledger, changes, store
}
