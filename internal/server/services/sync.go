// Package services contains the server-side application services.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/worldclock/internal/cursor"
	"github.com/dmitrijs2005/worldclock/internal/dbx"
	"github.com/dmitrijs2005/worldclock/internal/logging"
	"github.com/dmitrijs2005/worldclock/internal/server/models"
	"github.com/dmitrijs2005/worldclock/internal/server/repositories/clocks"
	"github.com/dmitrijs2005/worldclock/internal/wire"
)

// PageSize bounds one page of the change feed. It is a response-size
// knob, not a correctness parameter.
const PageSize = 10

// SyncService applies pushed changes and serves the paged change feed.
type SyncService struct {
	db     *sql.DB
	logger logging.Logger
}

func NewSyncService(db *sql.DB, logger logging.Logger) *SyncService {
	return &SyncService{db: db, logger: logger.With("module", "sync_service")}
}

// ApplyChanges processes pushed changes independently, each in its own
// transaction under the account lock. A change that loses the LWW race is
// dropped without error: the store already holds a newer-or-equal value
// and partial application is normal, not a failure.
func (s *SyncService) ApplyChanges(ctx context.Context, accountID string, changes []wire.Change) error {
	for _, c := range changes {
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := clocks.NewPostgresRepository(tx)
			if err := repo.LockAccount(ctx, accountID); err != nil {
				return err
			}

			var applied bool
			var err error
			if c.Tombstone != 0 {
				applied, err = repo.Tombstone(ctx, accountID, c.ID, c.UpdatedAt)
			} else {
				applied, err = repo.Upsert(ctx, &models.Entry{
					AccountID:       accountID,
					ID:              c.ID,
					Timezone:        c.Timezone,
					Label:           c.Label,
					Position:        c.Position,
					ClientUpdatedAt: c.UpdatedAt,
				})
			}
			if err != nil {
				return err
			}
			if !applied {
				s.logger.Debug(ctx, "change superseded by newer write", "id", c.ID)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to apply change %s: %w", c.ID, err)
		}
	}
	return nil
}

// Changes returns one page of the account's change feed past cur, plus
// the cursor to resume from. A nil next cursor means the caller has
// reached the end of the log.
func (s *SyncService) Changes(ctx context.Context, accountID string, cur cursor.Cursor) ([]wire.Change, *cursor.Cursor, error) {
	repo := clocks.NewPostgresRepository(s.db)
	rows, err := repo.SelectChangesSince(ctx, accountID, cur, PageSize)
	if err != nil {
		return nil, nil, err
	}

	changes := make([]wire.Change, 0, len(rows))
	for _, e := range rows {
		changes = append(changes, toWire(e))
	}

	var next *cursor.Cursor
	if len(rows) == PageSize {
		last := rows[len(rows)-1]
		next = &cursor.Cursor{UpdatedAt: last.UpdatedAt, ID: last.ID}
	}
	return changes, next, nil
}

func toWire(e *models.Entry) wire.Change {
	if e.Tombstone {
		return wire.Change{ID: e.ID, UpdatedAt: e.UpdatedAt, Tombstone: 1}
	}
	return wire.Change{
		ID:              e.ID,
		Timezone:        e.Timezone,
		Label:           e.Label,
		Position:        e.Position,
		UpdatedAt:       e.UpdatedAt,
		ClientUpdatedAt: e.ClientUpdatedAt,
	}
}
