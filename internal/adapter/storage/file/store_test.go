package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vendorledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLoadCache_MissingFile_ReturnsEmptyKinds(t *testing.T) {
	s := newStore(t)

	data, err := s.LoadCache()
	require.NoError(t, err)

	for _, k := range domain.Kinds() {
		assert.NotNil(t, data[k], "kind %s should be present", k)
		assert.Empty(t, data[k])
	}
}

func TestCache_Roundtrip(t *testing.T) {
	s := newStore(t)

	data, err := s.LoadCache()
	require.NoError(t, err)
	data[domain.KindVendors] = append(data[domain.KindVendors], domain.Record{
		"id":   "VND-100001",
		"name": "Acme Traders",
	})
	require.NoError(t, s.SaveCache(data))

	loaded, err := s.LoadCache()
	require.NoError(t, err)
	require.Len(t, loaded[domain.KindVendors], 1)
	assert.Equal(t, "VND-100001", loaded[domain.KindVendors][0].ID())
	assert.Equal(t, "Acme Traders", loaded[domain.KindVendors][0]["name"])
}

func TestChangeLog_Roundtrip_PreservesOrder(t *testing.T) {
	s := newStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	entries := []domain.ChangeEntry{
		{Timestamp: now, Action: domain.ChangeActionCreate, Resource: domain.KindVendors, Data: domain.Record{"id": "VND-1"}, ID: "VND-1"},
		{Timestamp: now, Action: domain.ChangeActionUpdate, Resource: domain.KindWallets, Data: domain.Record{"id": "WLT-1"}, ID: "WLT-1"},
		{Timestamp: now, Action: domain.ChangeActionDelete, Resource: domain.KindWallets, ID: "WLT-2"},
	}
	require.NoError(t, s.SaveChangeLog(entries))

	loaded, err := s.LoadChangeLog()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, domain.ChangeActionCreate, loaded[0].Action)
	assert.Equal(t, domain.ChangeActionUpdate, loaded[1].Action)
	assert.Equal(t, domain.ChangeActionDelete, loaded[2].Action)
	assert.Nil(t, loaded[2].Data, "delete entries carry no data")
	assert.Equal(t, "WLT-2", loaded[2].ID)
}

func TestLoadChangeLog_MissingFile(t *testing.T) {
	s := newStore(t)

	entries, err := s.LoadChangeLog()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSettings_DefaultWhenMissing(t *testing.T) {
	s := newStore(t)

	settings, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, settings.SyncFrequency())
}

func TestSettings_Roundtrip_KeepsUnknownKeys(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.SaveSettings(domain.Settings{
		"sync_frequency": 60,
		"theme":          "dark",
	}))

	loaded, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, loaded.SyncFrequency())
	assert.Equal(t, "dark", loaded["theme"])
}

func TestLoad_CorruptFile_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "localdb.json"), []byte("{not json"), 0o644))

	_, err = s.LoadCache()
	assert.Error(t, err)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.SaveSettings(domain.DefaultSettings()))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "settings.json", files[0].Name())
}

func TestPing(t *testing.T) {
	s := newStore(t)
	assert.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, "file-store", s.Name())
}
