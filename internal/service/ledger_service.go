package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
	"vendorledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService over the in-memory
// resource cache. One coarse mutex guards all cache access: public methods
// lock exactly once and everything below them runs on the *Locked variants,
// so the financial operations can compose CRUD steps without re-entry.
// Every mutation persists the cache snapshot and appends a change entry
// before returning.
type LedgerServiceImpl struct {
	mu      sync.Mutex
	cache   map[domain.Kind][]domain.Record
	store   ports.SnapshotStore
	changes *ChangeLog
	log     zerolog.Logger
}

// NewLedgerService loads the cache snapshot and returns the ledger.
func NewLedgerService(store ports.SnapshotStore, changes *ChangeLog, log zerolog.Logger) (*LedgerServiceImpl, error) {
	cache, err := store.LoadCache()
	if err != nil {
		return nil, fmt.Errorf("loading cache: %w", err)
	}
	return &LedgerServiceImpl{
		cache:   cache,
		store:   store,
		changes: changes,
		log:     log.With().Str("component", "ledger").Logger(),
	}, nil
}

// GetAll returns copies of every record of a kind, in insertion order.
func (s *LedgerServiceImpl) GetAll(kind domain.Kind) []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.cache[kind]
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return out
}

// GetByID returns a copy of the record with the given id.
func (s *LedgerServiceImpl) GetByID(kind domain.Kind, id string) (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findLocked(kind, id)
	if rec == nil {
		return nil, false
	}
	return rec.Clone(), true
}

// Create assigns an id when missing, appends the record to the cache,
// persists the snapshot and logs a create change. Business-rule validation
// is the caller's job; only persistence failures are returned.
func (s *LedgerServiceImpl) Create(ctx context.Context, kind domain.Kind, rec domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(kind, rec)
}

// Update merges fields into the existing record (shallow key overwrite) and
// logs an update change. Returns LED_001 when the id is unknown.
func (s *LedgerServiceImpl) Update(ctx context.Context, kind domain.Kind, id string, fields map[string]any) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(kind, id, fields)
}

// Delete removes a record after a dependency check and, for Payments and
// Deposits, a best-effort reversal of their financial effects. Returns
// LED_002 when another record still references the id, LED_001 when the id
// is unknown.
func (s *LedgerServiceImpl) Delete(ctx context.Context, kind domain.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = domain.CanonicalID(id)
	if err := s.checkDependenciesLocked(kind, id); err != nil {
		return err
	}

	if kind == domain.KindPayments || kind == domain.KindDeposits {
		s.revertLocked(kind, id)
	}

	records := s.cache[kind]
	kept := records[:0:0]
	for _, r := range records {
		if r.ID() != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return apperror.ErrNotFound(kind.Singular())
	}
	s.cache[kind] = kept

	if err := s.saveCacheLocked(); err != nil {
		return err
	}
	if err := s.changes.Append(domain.ChangeActionDelete, kind, nil, id); err != nil {
		return err
	}

	s.log.Info().Str("kind", string(kind)).Str("id", id).Msg("record deleted")
	return nil
}

// ProcessPayment debits the wallet, creates the payment record with its full
// allocation list, and reduces each allocated expense's balance. All steps
// apply atomically to the local cache under one lock window; each sub-step
// is individually logged for remote replay.
func (s *LedgerServiceImpl) ProcessPayment(ctx context.Context, req ports.PaymentRequest) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	walletID := domain.CanonicalID(req.WalletID)
	wallet := s.findLocked(domain.KindWallets, walletID)
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	balance := wallet.Decimal("balance")
	if balance.LessThan(req.Amount) {
		return nil, apperror.ErrInsufficientFunds(balance.String())
	}

	if _, err := s.updateLocked(domain.KindWallets, walletID, map[string]any{
		"balance": balance.Sub(req.Amount),
	}); err != nil {
		return nil, err
	}

	payment := domain.Record{
		"id":       domain.NewID(domain.KindPayments),
		"date":     orToday(req.Date),
		"amount":   req.Amount,
		"walletId": walletID,
		"vendorId": domain.CanonicalID(req.VendorID),
		// Full allocation objects are stored so deletion can reverse them.
		"refs": req.Allocations,
	}
	created, err := s.createLocked(domain.KindPayments, payment)
	if err != nil {
		return nil, err
	}

	for _, alloc := range req.Allocations {
		expense := s.findLocked(domain.KindExpenses, alloc.ExpenseID)
		if expense == nil {
			s.log.Warn().Str("expense_id", alloc.ExpenseID).Msg("payment allocation references unknown expense")
			continue
		}
		newBalance := expense.Decimal("balance").Sub(alloc.Amount)
		if newBalance.IsNegative() {
			newBalance = decimal.Zero
		}
		if _, err := s.updateLocked(domain.KindExpenses, alloc.ExpenseID, map[string]any{
			"balance": newBalance,
			"status":  domain.ExpenseStatusFor(newBalance, expense.Decimal("total")),
		}); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("payment_id", created.ID()).
		Str("wallet_id", walletID).
		Str("amount", req.Amount.String()).
		Int("allocations", len(req.Allocations)).
		Msg("payment processed")

	return created, nil
}

// ProcessDeposit credits the wallet and creates the deposit record.
func (s *LedgerServiceImpl) ProcessDeposit(ctx context.Context, req ports.DepositRequest) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	walletID := domain.CanonicalID(req.WalletID)
	wallet := s.findLocked(domain.KindWallets, walletID)
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	if _, err := s.updateLocked(domain.KindWallets, walletID, map[string]any{
		"balance": wallet.Decimal("balance").Add(req.Amount),
	}); err != nil {
		return nil, err
	}

	deposit := domain.Record{
		"id":       domain.NewID(domain.KindDeposits),
		"date":     orToday(req.Date),
		"amount":   req.Amount,
		"walletId": walletID,
		"vendorId": domain.CanonicalID(req.VendorID),
		"source":   "Vendor Transfer",
		"notes":    req.Notes,
	}
	created, err := s.createLocked(domain.KindDeposits, deposit)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("deposit_id", created.ID()).
		Str("wallet_id", walletID).
		Str("amount", req.Amount.String()).
		Msg("deposit processed")

	return created, nil
}

// ReplaceAll swaps the entire cache for remote data in one exclusive step.
func (s *LedgerServiceImpl) ReplaceAll(ctx context.Context, data map[domain.Kind][]domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := make(map[domain.Kind][]domain.Record, len(domain.Kinds()))
	for _, k := range domain.Kinds() {
		records := data[k]
		if records == nil {
			records = []domain.Record{}
		}
		cache[k] = records
	}
	s.cache = cache
	return s.saveCacheLocked()
}

// TotalRecords counts records across all kinds.
func (s *LedgerServiceImpl) TotalRecords() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, records := range s.cache {
		total += len(records)
	}
	return total
}

// ---- internal, caller holds s.mu ----

func (s *LedgerServiceImpl) findLocked(kind domain.Kind, id string) domain.Record {
	id = domain.CanonicalID(id)
	for _, r := range s.cache[kind] {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

func (s *LedgerServiceImpl) createLocked(kind domain.Kind, rec domain.Record) (domain.Record, error) {
	rec = rec.Clone()
	if rec.ID() == "" {
		rec["id"] = domain.NewID(kind)
	}
	s.cache[kind] = append(s.cache[kind], rec)

	if err := s.saveCacheLocked(); err != nil {
		return nil, err
	}
	if err := s.changes.Append(domain.ChangeActionCreate, kind, rec.Clone(), rec.ID()); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (s *LedgerServiceImpl) updateLocked(kind domain.Kind, id string, fields map[string]any) (domain.Record, error) {
	rec := s.findLocked(kind, id)
	if rec == nil {
		return nil, apperror.ErrNotFound(kind.Singular())
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		rec[k] = v
	}

	if err := s.saveCacheLocked(); err != nil {
		return nil, err
	}
	if err := s.changes.Append(domain.ChangeActionUpdate, kind, rec.Clone(), rec.ID()); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// revertLocked undoes the wallet and expense effects of a Payment or
// Deposit before its deletion. Best-effort only: a missing wallet or amount
// is logged and skipped, and the deletion proceeds regardless — forward
// progress is favored over strict consistency here.
func (s *LedgerServiceImpl) revertLocked(kind domain.Kind, id string) {
	rec := s.findLocked(kind, id)
	if rec == nil {
		return
	}

	walletID := rec.String("walletId")
	amount := rec.Decimal("amount")
	if walletID == "" || amount.IsZero() {
		return
	}

	wallet := s.findLocked(domain.KindWallets, walletID)
	if wallet == nil {
		s.log.Warn().
			Str("kind", string(kind)).
			Str("id", id).
			Str("wallet_id", walletID).
			Msg("cannot revert: wallet no longer exists")
		return
	}

	balance := wallet.Decimal("balance")
	switch kind {
	case domain.KindPayments:
		// Payment decreased the balance, add it back.
		balance = balance.Add(amount)
	case domain.KindDeposits:
		// Deposit increased the balance, take it back out.
		balance = balance.Sub(amount)
	}
	if _, err := s.updateLocked(domain.KindWallets, walletID, map[string]any{"balance": balance}); err != nil {
		s.log.Error().Err(err).Str("wallet_id", walletID).Msg("failed to revert wallet balance")
		return
	}
	s.log.Info().
		Str("kind", string(kind)).
		Str("id", id).
		Str("wallet_id", walletID).
		Str("balance", balance.String()).
		Msg("reverted wallet balance")

	if kind != domain.KindPayments {
		return
	}
	for _, alloc := range domain.ParseAllocations(rec["refs"]) {
		expense := s.findLocked(domain.KindExpenses, alloc.ExpenseID)
		if expense == nil {
			continue
		}
		restored := expense.Decimal("balance").Add(alloc.Amount)
		if _, err := s.updateLocked(domain.KindExpenses, alloc.ExpenseID, map[string]any{
			"balance": restored,
			"status":  domain.ExpenseStatusFor(restored, expense.Decimal("total")),
		}); err != nil {
			s.log.Error().Err(err).Str("expense_id", alloc.ExpenseID).Msg("failed to restore expense balance")
		}
	}
}

// checkDependenciesLocked blocks deletion of a record that another resource
// still references.
func (s *LedgerServiceImpl) checkDependenciesLocked(kind domain.Kind, id string) error {
	switch kind {
	case domain.KindWallets:
		for _, p := range s.cache[domain.KindPayments] {
			if p.String("walletId") == id {
				return apperror.ErrDependency("Wallet", "Payment", p.ID())
			}
		}
		for _, d := range s.cache[domain.KindDeposits] {
			if d.String("walletId") == id {
				return apperror.ErrDependency("Wallet", "Deposit", d.ID())
			}
		}

	case domain.KindVendors:
		for _, e := range s.cache[domain.KindExpenses] {
			if e.String("vendorId") == id {
				return apperror.ErrDependency("Vendor", "Expense", e.ID())
			}
		}
		for _, p := range s.cache[domain.KindPayments] {
			if p.String("vendorId") == id {
				return apperror.ErrDependency("Vendor", "Payment", p.ID())
			}
		}
		for _, d := range s.cache[domain.KindDeposits] {
			if d.String("vendorId") == id {
				return apperror.ErrDependency("Vendor", "Deposit", d.ID())
			}
		}

	case domain.KindExpenses:
		for _, p := range s.cache[domain.KindPayments] {
			for _, alloc := range domain.ParseAllocations(p["refs"]) {
				if alloc.ExpenseID == id {
					return apperror.ErrDependency("Expense", "Payment", p.ID())
				}
			}
		}
	}
	return nil
}

func (s *LedgerServiceImpl) saveCacheLocked() error {
	if err := s.store.SaveCache(s.cache); err != nil {
		return apperror.ErrPersistence(fmt.Errorf("saving cache: %w", err))
	}
	return nil
}

func orToday(date string) string {
	if date != "" {
		return date
	}
	return time.Now().Format("2006-01-02")
}
