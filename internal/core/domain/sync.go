package domain

import "time"

// SyncStatus is the outcome of the most recent sync attempt.
type SyncStatus string

const (
	SyncStatusNever   SyncStatus = "Never"
	SyncStatusSuccess SyncStatus = "Success"
	SyncStatusFailed  SyncStatus = "Failed"
	SyncStatusError   SyncStatus = "Error"
)

// SyncInfo records the last sync attempt. It is always overwritten whole,
// never appended to.
type SyncInfo struct {
	Time    *time.Time `json:"time"`
	Status  SyncStatus `json:"status"`
	Details string     `json:"details,omitempty"`
}

// Diff summarizes pending pushes per resource kind, derived purely from the
// local change log — no remote comparison is made.
type Diff struct {
	PendingPush int               `json:"pending_push"`
	Details     map[Kind]KindDiff `json:"details"`
}

// KindDiff is the per-kind slice of a Diff.
type KindDiff struct {
	Push int `json:"push"`
}

const (
	// SettingSyncFrequency is the settings key holding the push interval
	// in seconds.
	SettingSyncFrequency = "sync_frequency"

	defaultSyncFrequency = 300 * time.Second
)

// Settings is the runtime-mutable sync configuration document. Unknown keys
// are preserved across load/merge/save; only sync_frequency is interpreted.
type Settings map[string]any

// DefaultSettings returns the settings used when no document exists on disk.
func DefaultSettings() Settings {
	return Settings{SettingSyncFrequency: 300}
}

// SyncFrequency returns the configured push interval, falling back to the
// five-minute default when the value is missing. The coordinator applies its
// own 10-second floor, so very small values are allowed here.
func (s Settings) SyncFrequency() time.Duration {
	v, ok := s[SettingSyncFrequency]
	if !ok {
		return defaultSyncFrequency
	}
	secs := toDecimal(v).IntPart()
	if secs < 0 {
		return defaultSyncFrequency
	}
	return time.Duration(secs) * time.Second
}

// Clone returns a shallow copy of the settings document.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
