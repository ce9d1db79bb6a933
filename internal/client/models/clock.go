// Package models defines the device-local representation of world-clock
// entries.
package models

// Clock is one row of the local replica.
//
// UpdatedAt is the stamp of the latest local or replicated edit; on the
// wire it travels as the change's updated_at when pushing and arrives as
// client_updated_at when pulling. Stale marks rows with local edits the
// server has not confirmed yet; Deleted marks rows removed locally whose
// tombstone is still waiting to be pushed.
type Clock struct {
	ID        string
	Timezone  string
	Label     string
	Position  string
	UpdatedAt string
	Stale     bool
	Deleted   bool
}
