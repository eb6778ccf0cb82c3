package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "vendorledger/internal/adapter/http/handler"
	fileStorage "vendorledger/internal/adapter/storage/file"
	"vendorledger/internal/core/domain"
	"vendorledger/internal/core/ports"
	"vendorledger/internal/service"
	"vendorledger/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack over a real file store in a
// temp directory and an in-memory remote, exercising the HTTP layer,
// middleware, services and persistence end-to-end.
type testApp struct {
	server *httptest.Server
	store  *fileStorage.Store
	ledger ports.LedgerService
	sync   ports.SyncService
	remote *inMemoryRemote
	dir    string
}

func newTestApp(t *testing.T, dir string, remote *inMemoryRemote) *testApp {
	t.Helper()

	log := logger.NewWithWriter("error", io.Discard)

	store, err := fileStorage.New(dir)
	require.NoError(t, err)
	changes, err := service.NewChangeLog(store)
	require.NoError(t, err)
	ledger, err := service.NewLedgerService(store, changes, log)
	require.NoError(t, err)
	syncSvc, err := service.NewSyncService(ledger, changes, remote, store, log)
	require.NoError(t, err)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Ledger:         ledger,
		Sync:           syncSvc,
		HealthCheckers: []ports.HealthChecker{store},
		Logger:         log,
		Mode:           "test",
	})

	return &testApp{
		server: httptest.NewServer(router),
		store:  store,
		ledger: ledger,
		sync:   syncSvc,
		remote: remote,
		dir:    dir,
	}
}

func (a *testApp) close() {
	a.server.Close()
}

func (a *testApp) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

func dataField(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "body: %v", body)
	return data
}

func TestLedgerLifecycle(t *testing.T) {
	app := newTestApp(t, t.TempDir(), newInMemoryRemote())
	defer app.close()

	// Vendor, wallet and expense
	resp, body := app.do(t, http.MethodPost, "/v1/vendors", map[string]any{"name": "Acme Traders"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	vendorID := dataField(t, body)["id"].(string)

	resp, body = app.do(t, http.MethodPost, "/v1/wallets", map[string]any{"name": "Main", "balance": 1000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	walletID := dataField(t, body)["id"].(string)

	resp, body = app.do(t, http.MethodPost, "/v1/expenses", map[string]any{
		"description": "Office rent",
		"vendorId":    vendorID,
		"total":       300,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	expenseID := dataField(t, body)["id"].(string)

	// Payment fully allocated to the expense
	resp, body = app.do(t, http.MethodPost, "/v1/payments", map[string]any{
		"amount":   300,
		"walletId": walletID,
		"vendorId": vendorID,
		"refs":     []map[string]any{{"id": expenseID, "amount": 300}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	paymentID := dataField(t, body)["id"].(string)

	wallet, ok := app.ledger.GetByID(domain.KindWallets, walletID)
	require.True(t, ok)
	assert.Equal(t, "700", wallet.Decimal("balance").String())

	expense, ok := app.ledger.GetByID(domain.KindExpenses, expenseID)
	require.True(t, ok)
	assert.Equal(t, domain.ExpenseStatusPaid, expense["status"])

	// Expense is referenced by the payment, so it cannot go
	resp, _ = app.do(t, http.MethodDelete, "/v1/expenses/"+expenseID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Deleting the payment restores wallet and expense
	resp, _ = app.do(t, http.MethodDelete, "/v1/payments/"+paymentID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	wallet, _ = app.ledger.GetByID(domain.KindWallets, walletID)
	assert.Equal(t, "1000", wallet.Decimal("balance").String())
	expense, _ = app.ledger.GetByID(domain.KindExpenses, expenseID)
	assert.Equal(t, domain.ExpenseStatusUnpaid, expense["status"])
}

func TestPushPullRoundTrip(t *testing.T) {
	remote := newInMemoryRemote()
	app := newTestApp(t, t.TempDir(), remote)
	defer app.close()

	resp, body := app.do(t, http.MethodPost, "/v1/vendors", map[string]any{"name": "Acme"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	vendorID := dataField(t, body)["id"].(string)

	// Everything is queued locally until a sync runs
	resp, body = app.do(t, http.MethodGet, "/v1/sync/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), dataField(t, body)["pending_count"])

	resp, _ = app.do(t, http.MethodPost, "/v1/sync/force", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		return app.remote.appliedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	rec, ok := remote.record(domain.KindVendors, vendorID)
	require.True(t, ok)
	assert.Equal(t, "Acme", rec["name"])

	require.Eventually(t, func() bool {
		_, b := app.do(t, http.MethodGet, "/v1/sync/status", nil)
		return dataField(t, b)["pending_count"] == float64(0)
	}, 2*time.Second, 10*time.Millisecond)

	// Delete locally (queues a change), then pull: the remote copy comes
	// back and the queued delete stays pending.
	resp, _ = app.do(t, http.MethodDelete, "/v1/vendors/"+vendorID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, ok = app.ledger.GetByID(domain.KindVendors, vendorID)
	require.False(t, ok)

	resp, _ = app.do(t, http.MethodPost, "/v1/sync/pull", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		rec, found := app.ledger.GetByID(domain.KindVendors, vendorID)
		return found && rec["name"] == "Acme"
	}, 2*time.Second, 10*time.Millisecond)

	_, body = app.do(t, http.MethodGet, "/v1/sync/status", nil)
	assert.Equal(t, float64(1), dataField(t, body)["pending_count"], "pull must not drop the queued delete")
}

func TestPendingChangesSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	remote := newInMemoryRemote()

	app := newTestApp(t, dir, remote)
	resp, body := app.do(t, http.MethodPost, "/v1/vendors", map[string]any{"name": "Persistent Vendor"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	vendorID := dataField(t, body)["id"].(string)
	app.close()

	// Second process over the same data directory
	app2 := newTestApp(t, dir, remote)
	defer app2.close()

	rec, ok := app2.ledger.GetByID(domain.KindVendors, vendorID)
	require.True(t, ok, "cache must survive restart")
	assert.Equal(t, "Persistent Vendor", rec["name"])

	_, body = app2.do(t, http.MethodGet, "/v1/sync/status", nil)
	assert.Equal(t, float64(1), dataField(t, body)["pending_count"], "pending changes must survive restart")

	// The queued change still pushes after restart
	app2.do(t, http.MethodPost, "/v1/sync/force", nil)
	require.Eventually(t, func() bool {
		return remote.appliedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFailedPushKeepsQueueOrdered(t *testing.T) {
	remote := newInMemoryRemote()
	app := newTestApp(t, t.TempDir(), remote)
	defer app.close()

	for i := 1; i <= 3; i++ {
		resp, _ := app.do(t, http.MethodPost, "/v1/vendors", map[string]any{"name": fmt.Sprintf("Vendor %d", i)})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	remote.mu.Lock()
	remote.applyErr = fmt.Errorf("quota exceeded")
	remote.mu.Unlock()

	ok := app.sync.SyncNow(t.Context())
	assert.False(t, ok)

	_, body := app.do(t, http.MethodGet, "/v1/sync/status", nil)
	assert.Equal(t, float64(3), dataField(t, body)["pending_count"], "nothing confirmed, nothing lost")

	// Remote recovers, next push drains everything
	remote.mu.Lock()
	remote.applyErr = nil
	remote.mu.Unlock()

	require.True(t, app.sync.SyncNow(t.Context()))
	assert.Equal(t, 3, remote.appliedCount())
}

func TestSyncSettingsRoundTrip(t *testing.T) {
	app := newTestApp(t, t.TempDir(), newInMemoryRemote())
	defer app.close()

	resp, body := app.do(t, http.MethodPost, "/v1/sync/settings", map[string]any{"sync_frequency": 60})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(60), dataField(t, body)["sync_frequency"])

	_, body = app.do(t, http.MethodGet, "/v1/sync/status", nil)
	settings, ok := dataField(t, body)["settings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(60), settings["sync_frequency"])
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t, t.TempDir(), newInMemoryRemote())
	defer app.close()

	resp, body := app.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}
