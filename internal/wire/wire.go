// Package wire defines the JSON payloads exchanged on the /sync/changes
// endpoints and the boundary validation applied to incoming changes before
// anything reaches the store.
package wire

import (
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/worldclock/internal/common"
)

// Field length bounds enforced at the boundary.
const (
	IDMinLen    = 4
	IDMaxLen    = 80
	FieldMaxLen = 80
)

var (
	stampPattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)
	positionPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)
)

// Change is one world-clock entry on the wire. A live row carries every
// field with Tombstone 0; a tombstoned row carries only ID, UpdatedAt and
// Tombstone 1.
//
// On a push, UpdatedAt is the stamp the originating device attached at
// edit time (it becomes client_updated_at on the server and drives
// conflict resolution). On a pull, UpdatedAt is the server's own
// authoritative stamp and ClientUpdatedAt echoes the originating device's.
type Change struct {
	ID              string `json:"id"`
	Timezone        string `json:"timezone,omitempty"`
	Label           string `json:"label,omitempty"`
	Position        string `json:"position,omitempty"`
	UpdatedAt       string `json:"updated_at"`
	ClientUpdatedAt string `json:"client_updated_at,omitempty"`
	Tombstone       int    `json:"tombstone"`
}

// ChangesResponse is the body of GET /sync/changes. Next carries the URL
// of the following page, or null when the caller has reached the end of
// the log.
type ChangesResponse struct {
	Changes []Change `json:"changes"`
	Next    *string  `json:"next"`
}

// Validate checks a pushed change against the boundary rules. Violations
// wrap common.ErrorValidation and must be rejected before the store is
// touched.
func (c Change) Validate() error {
	if len(c.ID) < IDMinLen || len(c.ID) > IDMaxLen {
		return fmt.Errorf("%w: id length must be %d-%d", common.ErrorValidation, IDMinLen, IDMaxLen)
	}
	if !stampPattern.MatchString(c.UpdatedAt) {
		return fmt.Errorf("%w: updated_at must be a UTC timestamp", common.ErrorValidation)
	}
	if c.Tombstone != 0 {
		return nil
	}
	if len(c.Timezone) > FieldMaxLen {
		return fmt.Errorf("%w: timezone exceeds %d chars", common.ErrorValidation, FieldMaxLen)
	}
	if len(c.Label) > FieldMaxLen {
		return fmt.Errorf("%w: label exceeds %d chars", common.ErrorValidation, FieldMaxLen)
	}
	if c.Position != "" && !positionPattern.MatchString(c.Position) {
		return fmt.Errorf("%w: position contains symbols outside the alphabet", common.ErrorValidation)
	}
	return nil
}
