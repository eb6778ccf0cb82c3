package ports

import (
	"context"

	"vendorledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// LedgerService is the local-first ledger: every mutation is applied to the
// in-memory cache, persisted as a whole-document snapshot, and appended to
// the pending-change log before the call returns.
type LedgerService interface {
	GetAll(kind domain.Kind) []domain.Record
	GetByID(kind domain.Kind, id string) (domain.Record, bool)
	Create(ctx context.Context, kind domain.Kind, rec domain.Record) (domain.Record, error)
	Update(ctx context.Context, kind domain.Kind, id string, fields map[string]any) (domain.Record, error)
	Delete(ctx context.Context, kind domain.Kind, id string) error
	ProcessPayment(ctx context.Context, req PaymentRequest) (domain.Record, error)
	ProcessDeposit(ctx context.Context, req DepositRequest) (domain.Record, error)

	// ReplaceAll swaps the entire cache for remote data in one exclusive
	// step and persists it. Used by full pull only.
	ReplaceAll(ctx context.Context, data map[domain.Kind][]domain.Record) error
	// TotalRecords counts records across all kinds.
	TotalRecords() int
}

// PaymentRequest carries a validated payment to the ledger. The ledger
// assigns the record id and date when left empty.
type PaymentRequest struct {
	Date        string
	Amount      decimal.Decimal
	WalletID    string
	VendorID    string
	Allocations []domain.Allocation
}

// DepositRequest carries a validated deposit to the ledger.
type DepositRequest struct {
	Date     string
	Amount   decimal.Decimal
	WalletID string
	VendorID string
	Notes    string
}

// SyncService coordinates pushing the pending-change log to the remote store
// and pulling full snapshots from it.
type SyncService interface {
	// Run drives the periodic cycle until ctx is cancelled.
	Run(ctx context.Context)
	// SyncNow drains the change log once. Returns false when a sync is
	// already in flight or the push failed; the log keeps everything that
	// was not confirmed.
	SyncNow(ctx context.Context) bool
	// FullSync pushes pending changes and returns the last sync outcome.
	FullSync(ctx context.Context) domain.SyncInfo
	// PullFromRemote replaces the local cache with remote data.
	PullFromRemote(ctx context.Context) bool

	Status() SyncStatusReport
	Diff() domain.Diff
	UpdateSettings(fields map[string]any) (domain.Settings, error)
}

// SyncStatusReport is the read-only view served by the sync status endpoint.
type SyncStatusReport struct {
	PendingCount int             `json:"pending_count"`
	LastSync     domain.SyncInfo `json:"last_sync"`
	Settings     domain.Settings `json:"settings"`
}

// SnapshotStore persists the three on-disk documents, each saved as a
// complete snapshot on every call. Loading a missing document returns its
// empty default.
type SnapshotStore interface {
	LoadCache() (map[domain.Kind][]domain.Record, error)
	SaveCache(data map[domain.Kind][]domain.Record) error
	LoadChangeLog() ([]domain.ChangeEntry, error)
	SaveChangeLog(entries []domain.ChangeEntry) error
	LoadSettings() (domain.Settings, error)
	SaveSettings(s domain.Settings) error
}

// RemoteStore opens sessions against the spreadsheet-backed remote store.
type RemoteStore interface {
	Connect(ctx context.Context) (RemoteSession, error)
}

// RemoteSession is one authenticated connection to the remote store.
type RemoteSession interface {
	// FetchAll returns every record of a kind; an absent worksheet yields
	// an empty slice, not an error.
	FetchAll(ctx context.Context, kind domain.Kind) ([]domain.Record, error)
	// Apply replays a single logged change against the remote store.
	// "id not found" on update/delete is success — nothing to reconcile.
	Apply(ctx context.Context, entry domain.ChangeEntry) error
}
