package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/worldclock/internal/client/client"
	"github.com/dmitrijs2005/worldclock/internal/client/models"
	"github.com/dmitrijs2005/worldclock/internal/client/repositories/clocks"
	"github.com/dmitrijs2005/worldclock/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/worldclock/internal/cursor"
	"github.com/dmitrijs2005/worldclock/internal/logging"
	"github.com/dmitrijs2005/worldclock/internal/wire"
)

// CursorKey is the metadata key holding the durable pull cursor.
const CursorKey = "sync_cursor"

// SyncService runs the reconciliation cycle: push the stale batch, then
// pull the change feed page by page. Cycles are single-flight; a trigger
// that arrives while one is running returns immediately.
type SyncService struct {
	client   client.Client
	clocks   clocks.Repository
	metadata metadata.Repository
	logger   logging.Logger
	mu       sync.Mutex
}

func NewSyncService(c client.Client, clockRepo clocks.Repository, metadataRepo metadata.Repository, logger logging.Logger) *SyncService {
	return &SyncService{
		client:   c,
		clocks:   clockRepo,
		metadata: metadataRepo,
		logger:   logger.With("module", "sync_service"),
	}
}

// Sync runs one best-effort cycle. An unreachable server is not an
// error: local edits stay stale and the next cycle retries them.
func (s *SyncService) Sync(ctx context.Context) error {
	if !s.mu.TryLock() {
		s.logger.Debug(ctx, "sync already running, skipping")
		return nil
	}
	defer s.mu.Unlock()

	if err := s.client.Ping(ctx); err != nil {
		s.logger.Debug(ctx, "server unreachable, skipping sync", "error", err)
		return nil
	}

	if err := s.push(ctx); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	if err := s.pull(ctx); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}
	return nil
}

// Reset wipes the replica and the cursor, then replays the whole change
// feed. Local unpushed edits are discarded.
func (s *SyncService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clocks.Clear(ctx); err != nil {
		return err
	}
	if err := s.metadata.Delete(ctx, CursorKey); err != nil {
		return err
	}

	if err := s.client.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "server unreachable, replica will refill on next sync", "error", err)
		return nil
	}
	return s.pull(ctx)
}

// push uploads every stale row. The stale flags are not cleared here:
// the pull that follows observes the accepted rows coming back through
// the feed and clears them, so a crash between push and pull cannot lose
// the resend.
func (s *SyncService) push(ctx context.Context) error {
	stale, err := s.clocks.GetAllStale(ctx)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	batch := make([]wire.Change, 0, len(stale))
	for _, c := range stale {
		if c.Deleted {
			batch = append(batch, wire.Change{ID: c.ID, UpdatedAt: c.UpdatedAt, Tombstone: 1})
		} else {
			batch = append(batch, wire.Change{
				ID:        c.ID,
				Timezone:  c.Timezone,
				Label:     c.Label,
				Position:  c.Position,
				UpdatedAt: c.UpdatedAt,
			})
		}
	}

	s.logger.Debug(ctx, "pushing stale changes", "count", len(batch))
	return s.client.PushChanges(ctx, batch)
}

// pull consumes the change feed from the durable cursor onward. The
// cursor advances only after a page has been fully applied; re-applying
// a page after a crash is harmless because every application is
// idempotent.
func (s *SyncService) pull(ctx context.Context) error {
	var cur cursor.Cursor
	raw, err := s.metadata.Get(ctx, CursorKey)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		cur = cursor.Decode(string(raw))
	}

	for {
		changes, next, err := s.client.PullChanges(ctx, cur)
		if err != nil {
			return err
		}
		for _, ch := range changes {
			if err := s.apply(ctx, ch); err != nil {
				return err
			}
		}
		if next == nil {
			return nil
		}
		cur = *next
		if err := s.metadata.Set(ctx, CursorKey, []byte(cur.Encode())); err != nil {
			return err
		}
	}
}

func (s *SyncService) apply(ctx context.Context, ch wire.Change) error {
	if ch.Tombstone != 0 {
		return s.clocks.DeleteByID(ctx, ch.ID)
	}
	return s.clocks.ApplyRemote(ctx, &models.Clock{
		ID:        ch.ID,
		Timezone:  ch.Timezone,
		Label:     ch.Label,
		Position:  ch.Position,
		UpdatedAt: ch.ClientUpdatedAt,
	})
}
