// Package services implements the device-side application logic: local
// clock mutations and the push/pull reconciliation cycle.
package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/worldclock/internal/client/models"
	"github.com/dmitrijs2005/worldclock/internal/client/repositories/clocks"
	"github.com/dmitrijs2005/worldclock/internal/common"
	"github.com/dmitrijs2005/worldclock/internal/logging"
	"github.com/dmitrijs2005/worldclock/internal/position"
	"github.com/dmitrijs2005/worldclock/internal/timex"
)

// utcOffsetPattern accepts fixed offsets like "UTC+5" or "UTC-3:30" for
// hosts without tzdata entries.
var utcOffsetPattern = regexp.MustCompile(`^UTC[+-]\d{1,2}(:\d{2})?$`)

// ValidateTimezone accepts IANA names resolvable on this host plus fixed
// UTC offsets.
func ValidateTimezone(name string) error {
	if name == "" {
		return fmt.Errorf("%w: timezone required", common.ErrorValidation)
	}
	if utcOffsetPattern.MatchString(name) {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", common.ErrorValidation, name)
	}
	return nil
}

// ClockService performs local, offline-first mutations on the replica.
// Every mutation only touches the local database; the sync cycle moves it
// to the server later.
type ClockService struct {
	repo   clocks.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewClockService(repo clocks.Repository, logger logging.Logger) *ClockService {
	return &ClockService{repo: repo, logger: logger.With("module", "clock_service"), now: time.Now}
}

// Add appends a clock at the end of the list.
func (s *ClockService) Add(ctx context.Context, timezone, label string) (*models.Clock, error) {
	if err := ValidateTimezone(timezone); err != nil {
		return nil, err
	}

	last, err := s.repo.LastPosition(ctx)
	if err != nil {
		return nil, err
	}
	pos := position.Initial
	if last != "" {
		pos, err = position.Midpoint(last, "")
		if err != nil {
			return nil, fmt.Errorf("failed to allocate position: %w", err)
		}
	}

	c := &models.Clock{
		ID:        uuid.NewString(),
		Timezone:  timezone,
		Label:     label,
		Position:  pos,
		UpdatedAt: timex.Stamp(s.now()),
	}
	if err := s.repo.SaveLocal(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClockService) Rename(ctx context.Context, id, label string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.Label = label
	c.UpdatedAt = timex.Stamp(s.now())
	return s.repo.SaveLocal(ctx, c)
}

// Move places the clock at the given slot of the display order (0-based,
// clamped). Only the moved row gets a new position; its neighbors keep
// theirs, so a concurrent move of a different clock on another device
// does not conflict.
func (s *ClockService) Move(ctx context.Context, id string, index int) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	rest := make([]models.Clock, 0, len(list))
	for _, item := range list {
		if item.ID != id {
			rest = append(rest, item)
		}
	}
	if index < 0 {
		index = 0
	}
	if index > len(rest) {
		index = len(rest)
	}

	var lower, upper string
	if index > 0 {
		lower = rest[index-1].Position
	}
	if index < len(rest) {
		upper = rest[index].Position
	}

	pos := position.Initial
	if lower != "" || upper != "" {
		pos, err = position.Midpoint(lower, upper)
		if err != nil {
			return fmt.Errorf("failed to allocate position: %w", err)
		}
	}

	c.Position = pos
	c.UpdatedAt = timex.Stamp(s.now())
	return s.repo.SaveLocal(ctx, c)
}

// Remove hides the clock locally and queues its tombstone.
func (s *ClockService) Remove(ctx context.Context, id string) error {
	return s.repo.MarkDeleted(ctx, id, timex.Stamp(s.now()))
}

func (s *ClockService) List(ctx context.Context) ([]models.Clock, error) {
	return s.repo.List(ctx)
}
