package domain

import "time"

// ChangeAction is the kind of mutation recorded in the pending-change log.
type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "create"
	ChangeActionUpdate ChangeAction = "update"
	ChangeActionDelete ChangeAction = "delete"
)

// ChangeEntry is one local mutation awaiting propagation to the remote
// store. Entries are replayed strictly in append order and are never merged:
// three updates to the same record produce three entries.
type ChangeEntry struct {
	Timestamp time.Time    `json:"timestamp"`
	Action    ChangeAction `json:"action"`
	Resource  Kind         `json:"resource"`
	Data      Record       `json:"data,omitempty"` // nil for deletes
	ID        string       `json:"id"`
}
