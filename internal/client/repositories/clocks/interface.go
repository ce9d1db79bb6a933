package clocks

import (
	"context"

	"github.com/dmitrijs2005/worldclock/internal/client/models"
)

// Repository describes the operations the local replica supports.
// Implementations are backed by the device's SQLite database.
type Repository interface {
	// SaveLocal records a local edit: the row is upserted with the stale
	// flag set so the next sync cycle pushes it.
	SaveLocal(ctx context.Context, clock *models.Clock) error

	// ApplyRemote upserts a row pulled from the server, clearing the
	// stale and deleted flags. A stale row with a newer local stamp is
	// left alone so an unconfirmed edit is not clobbered by an older
	// server state.
	ApplyRemote(ctx context.Context, clock *models.Clock) error

	// MarkDeleted flags a row as locally removed. The row stays (stale)
	// until its tombstone has been pushed and echoed back.
	MarkDeleted(ctx context.Context, id string, updatedAt string) error

	// DeleteByID removes a row outright. Used when a tombstone arrives
	// from the server.
	DeleteByID(ctx context.Context, id string) error

	// GetByID returns a single live row.
	GetByID(ctx context.Context, id string) (*models.Clock, error)

	// List returns all live rows in display order.
	List(ctx context.Context) ([]models.Clock, error)

	// GetAllStale returns rows with unpushed local changes, deletions
	// included.
	GetAllStale(ctx context.Context) ([]*models.Clock, error)

	// LastPosition returns the largest position among live rows, or ""
	// when the list is empty.
	LastPosition(ctx context.Context) (string, error)

	// Clear wipes the replica.
	Clear(ctx context.Context) error
}
