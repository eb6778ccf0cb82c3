// Package file persists the three local documents — resource cache,
// pending-change log and sync settings — each as a complete JSON snapshot
// rewritten on every save.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vendorledger/internal/core/domain"
)

const (
	cacheFile    = "localdb.json"
	pendingFile  = "pending.json"
	settingsFile = "settings.json"
)

// Store reads and writes the snapshot documents under a single directory.
type Store struct {
	dir string
}

// New creates the data directory if needed and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

// LoadCache reads the resource cache. A missing file yields an empty cache;
// every kind is present in the result even when empty.
func (s *Store) LoadCache() (map[domain.Kind][]domain.Record, error) {
	data := make(map[domain.Kind][]domain.Record)
	if err := s.load(cacheFile, &data); err != nil {
		return nil, err
	}
	for _, k := range domain.Kinds() {
		if data[k] == nil {
			data[k] = []domain.Record{}
		}
	}
	return data, nil
}

// SaveCache writes the whole resource cache snapshot.
func (s *Store) SaveCache(data map[domain.Kind][]domain.Record) error {
	return s.save(cacheFile, data)
}

// LoadChangeLog reads the pending-change log in append order.
func (s *Store) LoadChangeLog() ([]domain.ChangeEntry, error) {
	var entries []domain.ChangeEntry
	if err := s.load(pendingFile, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.ChangeEntry{}
	}
	return entries, nil
}

// SaveChangeLog writes the whole pending-change log snapshot.
func (s *Store) SaveChangeLog(entries []domain.ChangeEntry) error {
	return s.save(pendingFile, entries)
}

// LoadSettings reads the settings document, falling back to defaults when
// the file does not exist yet.
func (s *Store) LoadSettings() (domain.Settings, error) {
	settings := domain.Settings{}
	if err := s.load(settingsFile, &settings); err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		settings = domain.DefaultSettings()
	}
	return settings, nil
}

// SaveSettings writes the settings document.
func (s *Store) SaveSettings(settings domain.Settings) error {
	return s.save(settingsFile, settings)
}

// Ping implements ports.HealthChecker by verifying the data dir is writable.
func (s *Store) Ping(ctx context.Context) error {
	probe := filepath.Join(s.dir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	return os.Remove(probe)
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "file-store"
}

func (s *Store) load(name string, out any) error {
	path := filepath.Join(s.dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// save writes the document to a temp file and renames it into place, so a
// crash mid-write never leaves a truncated snapshot.
func (s *Store) save(name string, doc any) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
