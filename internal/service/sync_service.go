package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
	"vendorledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	// initialPullRetry is the backoff before retrying the startup pull of
	// an empty cache.
	initialPullRetry = time.Minute
	// minSyncInterval floors the configured sync frequency.
	minSyncInterval = 10 * time.Second
)

// SyncServiceImpl implements ports.SyncService. A single background
// goroutine drives the periodic cycle; manual syncs and pulls from request
// handlers share the same non-blocking guard, so at most one push-class
// operation is in flight and a concurrent trigger is a clean no-op.
type SyncServiceImpl struct {
	ledger  ports.LedgerService
	changes *ChangeLog
	remote  ports.RemoteStore
	store   ports.SnapshotStore
	log     zerolog.Logger

	// opMu is TryLock-ed only: push/pull never queue behind each other.
	opMu sync.Mutex

	// stateMu guards lastSync and settings.
	stateMu  sync.Mutex
	lastSync domain.SyncInfo
	settings domain.Settings
}

// NewSyncService loads the settings document and returns the coordinator.
func NewSyncService(
	ledger ports.LedgerService,
	changes *ChangeLog,
	remote ports.RemoteStore,
	store ports.SnapshotStore,
	log zerolog.Logger,
) (*SyncServiceImpl, error) {
	settings, err := store.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return &SyncServiceImpl{
		ledger:   ledger,
		changes:  changes,
		remote:   remote,
		store:    store,
		log:      log.With().Str("component", "sync").Logger(),
		lastSync: domain.SyncInfo{Status: domain.SyncStatusNever},
		settings: settings,
	}, nil
}

// Run drives the periodic cycle until ctx is cancelled: pull when the local
// cache is empty, push pending changes, sleep for the configured frequency.
func (s *SyncServiceImpl) Run(ctx context.Context) {
	s.log.Info().Msg("sync worker started")

	for {
		if s.ledger.TotalRecords() == 0 {
			s.log.Info().Msg("local cache is empty, attempting initial pull")
			if !s.PullFromRemote(ctx) {
				s.log.Warn().Dur("retry_in", initialPullRetry).Msg("initial pull failed")
				if !sleepCtx(ctx, initialPullRetry) {
					return
				}
				continue
			}
		}

		s.SyncNow(ctx)

		if !sleepCtx(ctx, s.interval()) {
			s.log.Info().Msg("sync worker stopped")
			return
		}
	}
}

// SyncNow drains the change log against the remote store, head first.
// Entries are removed only on confirmed success; the first failure stops the
// drain and leaves everything behind it queued for the next cycle. Returns
// false when a sync was already in flight or the push did not complete.
func (s *SyncServiceImpl) SyncNow(ctx context.Context) bool {
	if !s.opMu.TryLock() {
		s.log.Debug().Msg("sync already in progress, skipping")
		return false
	}
	defer s.opMu.Unlock()

	pending := s.changes.Len()
	if pending == 0 {
		return true
	}
	s.log.Info().Int("pending", pending).Msg("pushing queued changes")

	session, err := s.remote.Connect(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("connection failed during push")
		s.setInfo(statusFor(err), fmt.Sprintf("connection failed during push: %v", err))
		return false
	}

	for {
		entry, ok := s.changes.PeekHead()
		if !ok {
			break
		}
		if err := session.Apply(ctx, entry); err != nil {
			// Stop here: this entry and everything behind it stays
			// queued, in order, for the next cycle.
			s.log.Warn().
				Err(err).
				Str("action", string(entry.Action)).
				Str("resource", string(entry.Resource)).
				Str("id", entry.ID).
				Msg("remote apply failed, stopping drain")
			s.setInfo(domain.SyncStatusFailed, fmt.Sprintf("apply %s %s %s: %v", entry.Action, entry.Resource, entry.ID, err))
			return false
		}
		if err := s.changes.PopHead(); err != nil {
			s.log.Error().Err(err).Msg("failed to persist change log after pop")
			s.setInfo(domain.SyncStatusError, fmt.Sprintf("persisting change log: %v", err))
			return false
		}
	}

	s.setInfo(domain.SyncStatusSuccess, "changes pushed")
	s.log.Info().Int("pushed", pending).Msg("push complete")
	return true
}

// FullSync is the manual push operation. Pull is a separate explicit call.
func (s *SyncServiceImpl) FullSync(ctx context.Context) domain.SyncInfo {
	s.log.Info().Msg("manual sync triggered")
	if s.SyncNow(ctx) {
		s.log.Info().Msg("manual push complete")
	} else {
		s.log.Warn().Msg("manual push completed with issues")
	}
	return s.lastInfo()
}

// PullFromRemote fetches every resource kind and replaces the entire local
// cache in one exclusive step. The pending-change log is left untouched.
func (s *SyncServiceImpl) PullFromRemote(ctx context.Context) bool {
	if !s.opMu.TryLock() {
		s.log.Debug().Msg("sync already in progress, skipping pull")
		return false
	}
	defer s.opMu.Unlock()

	s.log.Info().Msg("connecting for remote pull")
	session, err := s.remote.Connect(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("connection failed for pull")
		s.setInfo(statusFor(err), fmt.Sprintf("connection failed for pull: %v", err))
		return false
	}

	data := make(map[domain.Kind][]domain.Record, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		records, err := session.FetchAll(ctx, kind)
		if err != nil {
			s.log.Warn().Err(err).Str("kind", string(kind)).Msg("fetch failed during pull")
			s.setInfo(domain.SyncStatusFailed, fmt.Sprintf("fetching %s: %v", kind, err))
			return false
		}
		data[kind] = records
	}

	if err := s.ledger.ReplaceAll(ctx, data); err != nil {
		s.log.Error().Err(err).Msg("failed to persist pulled cache")
		s.setInfo(domain.SyncStatusError, fmt.Sprintf("persisting pulled cache: %v", err))
		return false
	}

	s.setInfo(domain.SyncStatusSuccess, "full pull complete")
	s.log.Info().Msg("full pull complete")
	return true
}

// Status reports pending count, last sync outcome and current settings.
func (s *SyncServiceImpl) Status() ports.SyncStatusReport {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	return ports.SyncStatusReport{
		PendingCount: s.changes.Len(),
		LastSync:     s.lastSync,
		Settings:     s.settings.Clone(),
	}
}

// Diff counts pending pushes per resource kind from the local log only.
func (s *SyncServiceImpl) Diff() domain.Diff {
	diff := domain.Diff{Details: make(map[domain.Kind]domain.KindDiff, len(domain.Kinds()))}
	for _, k := range domain.Kinds() {
		diff.Details[k] = domain.KindDiff{}
	}

	for _, entry := range s.changes.Snapshot() {
		diff.PendingPush++
		kd := diff.Details[entry.Resource]
		kd.Push++
		diff.Details[entry.Resource] = kd
	}
	return diff
}

// UpdateSettings merges the provided fields into the settings document and
// persists it. The new sync frequency takes effect on the next cycle.
func (s *SyncServiceImpl) UpdateSettings(fields map[string]any) (domain.Settings, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	for k, v := range fields {
		s.settings[k] = v
	}
	if err := s.store.SaveSettings(s.settings); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("saving settings: %w", err))
	}
	s.log.Info().Interface("settings", s.settings).Msg("settings updated")
	return s.settings.Clone(), nil
}

func (s *SyncServiceImpl) interval() time.Duration {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	freq := s.settings.SyncFrequency()
	if freq < minSyncInterval {
		return minSyncInterval
	}
	return freq
}

func (s *SyncServiceImpl) setInfo(status domain.SyncStatus, details string) {
	now := time.Now().UTC()
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.lastSync = domain.SyncInfo{Time: &now, Status: status, Details: details}
}

func (s *SyncServiceImpl) lastInfo() domain.SyncInfo {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.lastSync
}

// statusFor distinguishes configuration problems (Error) from transient
// remote failures (Failed).
func statusFor(err error) domain.SyncStatus {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code == "SYNC_001" {
		return domain.SyncStatusError
	}
	return domain.SyncStatusFailed
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
