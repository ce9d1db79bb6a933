// Package client provides the device side of the sync protocol: the
// transport to the server and local database initialization.
package client

import (
	"context"

	"github.com/dmitrijs2005/worldclock/internal/cursor"
	"github.com/dmitrijs2005/worldclock/internal/wire"
)

// Client is the transport to the sync server.
type Client interface {
	// Ping reports whether the server is reachable. Sync cycles are
	// skipped while it fails.
	Ping(ctx context.Context) error

	// PushChanges uploads a batch of local changes.
	PushChanges(ctx context.Context, changes []wire.Change) error

	// PullChanges fetches one page of the change feed past cur. A nil
	// next cursor means the end of the log.
	PullChanges(ctx context.Context, cur cursor.Cursor) ([]wire.Change, *cursor.Cursor, error)

	Close() error
}
