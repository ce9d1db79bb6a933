// Package clocks stores the device-local replica of the world-clock list.
package clocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/worldclock/internal/client/models"
	"github.com/dmitrijs2005/worldclock/internal/common"
	"github.com/dmitrijs2005/worldclock/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) SaveLocal(ctx context.Context, c *models.Clock) error {
	query := `INSERT INTO clocks (id, timezone, label, position, updated_at, stale, deleted)
			VALUES (?, ?, ?, ?, ?, 1, 0)
			ON CONFLICT(id) DO UPDATE SET
				timezone = excluded.timezone,
				label = excluded.label,
				position = excluded.position,
				updated_at = excluded.updated_at,
				stale = 1,
				deleted = 0
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Timezone, c.Label, c.Position, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save clock: %w", err)
	}
	return nil
}

// ApplyRemote writes the server's version of a row. The conflict clause
// skips the update when a stale local edit carries a strictly newer
// stamp; that edit will be pushed on the next cycle instead.
func (r *SQLiteRepository) ApplyRemote(ctx context.Context, c *models.Clock) error {
	query := `INSERT INTO clocks (id, timezone, label, position, updated_at, stale, deleted)
			VALUES (?, ?, ?, ?, ?, 0, 0)
			ON CONFLICT(id) DO UPDATE SET
				timezone = excluded.timezone,
				label = excluded.label,
				position = excluded.position,
				updated_at = excluded.updated_at,
				stale = 0,
				deleted = 0
			WHERE clocks.stale = 0 OR excluded.updated_at >= clocks.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Timezone, c.Label, c.Position, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to apply remote clock: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string, updatedAt string) error {
	query := `UPDATE clocks SET deleted = 1, stale = 1, updated_at = ? WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark clock deleted: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete clock: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Clock, error) {
	query := `SELECT id, timezone, label, position, updated_at, stale, deleted
			FROM clocks WHERE deleted = 0 AND id = ?`
	c := &models.Clock{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Timezone, &c.Label, &c.Position, &c.UpdatedAt, &c.Stale, &c.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Clock, error) {
	query := `SELECT id, timezone, label, position, updated_at, stale
			FROM clocks WHERE deleted = 0 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select clocks: %w", err)
	}
	defer rows.Close()

	var result []models.Clock
	for rows.Next() {
		var item models.Clock
		if err := rows.Scan(&item.ID, &item.Timezone, &item.Label, &item.Position, &item.UpdatedAt, &item.Stale); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetAllStale(ctx context.Context) ([]*models.Clock, error) {
	query := `SELECT id, timezone, label, position, updated_at, deleted
			FROM clocks WHERE stale = 1`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select stale clocks: %w", err)
	}
	defer rows.Close()

	var result []*models.Clock
	for rows.Next() {
		item := &models.Clock{Stale: true}
		if err := rows.Scan(&item.ID, &item.Timezone, &item.Label, &item.Position, &item.UpdatedAt, &item.Deleted); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) LastPosition(ctx context.Context) (string, error) {
	var pos string
	err := r.db.QueryRowContext(ctx,
		`SELECT position FROM clocks WHERE deleted = 0 ORDER BY position DESC LIMIT 1`).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to select last position: %w", err)
	}
	return pos, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clocks`)
	if err != nil {
		return fmt.Errorf("failed to clear clocks: %w", err)
	}
	return nil
}
