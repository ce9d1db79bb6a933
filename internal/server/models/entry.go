// Package models defines the server-side representation of world-clock
// entries.
package models

// Entry is one row of the per-account entry table. A tombstoned entry
// keeps its row (so the deletion itself replicates) but carries no
// payload.
//
// UpdatedAt is the store's own authoritative stamp, set by whichever
// write was last accepted and never decreasing for a given ID; it orders
// the change-log scan. ClientUpdatedAt is the stamp the originating
// device attached at edit time; it alone decides conflicts.
type Entry struct {
	AccountID       string
	ID              string
	Timezone        string
	Label           string
	Position        string
	UpdatedAt       string
	ClientUpdatedAt string
	Tombstone       bool
}
