// Package clocks provides the PostgreSQL-backed change-log store: the
// authoritative per-account entry table together with the ordered scan
// that feeds incremental sync.
package clocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/worldclock/internal/cursor"
	"github.com/dmitrijs2005/worldclock/internal/dbx"
	"github.com/dmitrijs2005/worldclock/internal/position"
	"github.com/dmitrijs2005/worldclock/internal/server/models"
	"github.com/dmitrijs2005/worldclock/internal/timex"
)

// PostgresRepository implements the change-log store over a dbx.DBTX.
// Write methods expect to run inside a transaction that already holds the
// account lock (see LockAccount); the service layer composes the two.
type PostgresRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// LockAccount serializes writers for one account for the duration of the
// current transaction. Devices of different accounts never contend.
func (r *PostgresRepository) LockAccount(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, accountID)
	if err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}
	return nil
}

// Upsert conditionally writes a live entry. The write is applied only when
// no stored row for the same id carries a client_updated_at greater than
// or equal to the incoming one; a write that loses this race is silently
// dropped and Upsert reports applied=false.
//
// Before writing, the position is checked against other live entries of
// the account: if a different entry already occupies the exact same
// position, a fresh one is computed between the colliding position and its
// successor, so a write race on position degrades into a safe, still
// ordered placement instead of a duplicate sort key.
func (r *PostgresRepository) Upsert(ctx context.Context, e *models.Entry) (bool, error) {
	existing, err := r.get(ctx, e.AccountID, e.ID)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.ClientUpdatedAt >= e.ClientUpdatedAt {
		return false, nil
	}

	pos, err := r.resolvePosition(ctx, e.AccountID, e.ID, e.Position)
	if err != nil {
		return false, err
	}

	row := *e
	row.Position = pos
	row.Tombstone = false
	row.UpdatedAt = r.nextStamp(existing)
	if err := r.put(ctx, &row); err != nil {
		return false, err
	}
	return true, nil
}

// Tombstone conditionally marks an entry deleted, clearing its payload.
// The same precedence rule as Upsert applies: a tombstone only wins when
// its client stamp is strictly newer than the stored row's. Tombstoning an
// id the store has never seen records the deletion anyway, so it still
// replicates to devices that did see the entry.
func (r *PostgresRepository) Tombstone(ctx context.Context, accountID, id, clientUpdatedAt string) (bool, error) {
	existing, err := r.get(ctx, accountID, id)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.ClientUpdatedAt >= clientUpdatedAt {
		return false, nil
	}

	row := models.Entry{
		AccountID:       accountID,
		ID:              id,
		ClientUpdatedAt: clientUpdatedAt,
		Tombstone:       true,
		UpdatedAt:       r.nextStamp(existing),
	}
	if err := r.put(ctx, &row); err != nil {
		return false, err
	}
	return true, nil
}

// SelectChangesSince returns up to limit rows (tombstoned or not) past the
// cursor, ordered ascending by (updated_at, id).
func (r *PostgresRepository) SelectChangesSince(ctx context.Context, accountID string, cur cursor.Cursor, limit int) ([]*models.Entry, error) {
	query := `
		SELECT id, timezone, label, position, updated_at, client_updated_at, tombstone
		FROM clocks
		WHERE account_id = $1 AND (updated_at, id) > ($2, $3)
		ORDER BY updated_at, id
		LIMIT $4
	`
	rows, err := r.db.QueryContext(ctx, query, accountID, cur.UpdatedAt, cur.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select changes: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		item := models.Entry{AccountID: accountID}
		if err := rows.Scan(
			&item.ID, &item.Timezone, &item.Label, &item.Position,
			&item.UpdatedAt, &item.ClientUpdatedAt, &item.Tombstone,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) get(ctx context.Context, accountID, id string) (*models.Entry, error) {
	query := `
		SELECT updated_at, client_updated_at
		FROM clocks
		WHERE account_id = $1 AND id = $2
	`
	e := models.Entry{AccountID: accountID, ID: id}
	err := r.db.QueryRowContext(ctx, query, accountID, id).Scan(&e.UpdatedAt, &e.ClientUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}
	return &e, nil
}

// resolvePosition returns pos unless another live entry of the account
// already sits on it, in which case a key between the colliding position
// and its successor is computed instead.
func (r *PostgresRepository) resolvePosition(ctx context.Context, accountID, id, pos string) (string, error) {
	if pos == "" {
		return pos, nil
	}

	var colliding string
	err := r.db.QueryRowContext(ctx, `
		SELECT position FROM clocks
		WHERE account_id = $1 AND id <> $2 AND position = $3 AND tombstone = FALSE
		LIMIT 1
	`, accountID, id, pos).Scan(&colliding)
	if errors.Is(err, sql.ErrNoRows) {
		return pos, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check position collision: %w", err)
	}

	var next string
	err = r.db.QueryRowContext(ctx, `
		SELECT position FROM clocks
		WHERE account_id = $1 AND id <> $2 AND position > $3 AND tombstone = FALSE
		ORDER BY position
		LIMIT 1
	`, accountID, id, pos).Scan(&next)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to find next position: %w", err)
	}

	resolved, err := position.Midpoint(colliding, next)
	if err != nil {
		return "", fmt.Errorf("failed to resolve position collision: %w", err)
	}
	return resolved, nil
}

func (r *PostgresRepository) put(ctx context.Context, e *models.Entry) error {
	query := `
		INSERT INTO clocks (account_id, id, timezone, label, position, updated_at, client_updated_at, tombstone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (account_id, id)
		DO UPDATE SET
			timezone = excluded.timezone,
			label = excluded.label,
			position = excluded.position,
			updated_at = excluded.updated_at,
			client_updated_at = excluded.client_updated_at,
			tombstone = excluded.tombstone
	`
	_, err := r.db.ExecContext(ctx, query,
		e.AccountID, e.ID, e.Timezone, e.Label, e.Position, e.UpdatedAt, e.ClientUpdatedAt, e.Tombstone)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// nextStamp produces the authoritative updated_at for an accepted write:
// the current wall clock, pushed forward when the stored row's stamp is
// not behind it, so updated_at strictly advances for a given id and a
// cursor that passed the old stamp cannot miss the new write.
func (r *PostgresRepository) nextStamp(existing *models.Entry) string {
	stamp := timex.Stamp(r.now())
	if existing == nil || stamp > existing.UpdatedAt {
		return stamp
	}
	t, err := timex.ParseStamp(existing.UpdatedAt)
	if err != nil {
		return stamp
	}
	return timex.Stamp(t.Add(time.Second))
}
