package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ledeberg/tiller/internal/repository"
)

// SnapshotReader implements repository.SnapshotReader over the SQLite
// repositories. SQLite serializes writers, so sequential reads inside one
// process see a consistent view.
type SnapshotReader struct {
	tasks      *TaskRepository
	objectives *ObjectiveRepository
	inbox      *InboxRepository
	calendar   *CalendarRepository
	settings   *SettingsRepository
	now        func() time.Time
}

// NewSnapshotReader creates a SnapshotReader. A nil clock uses wall time.
func NewSnapshotReader(
	tasks *TaskRepository,
	objectives *ObjectiveRepository,
	inbox *InboxRepository,
	calendar *CalendarRepository,
	settings *SettingsRepository,
	now func() time.Time,
) *SnapshotReader {
	if now == nil {
		now = time.Now
	}
	return &SnapshotReader{
		tasks:      tasks,
		objectives: objectives,
		inbox:      inbox,
		calendar:   calendar,
		settings:   settings,
		now:        now,
	}
}

// ReadSnapshot assembles a full state snapshot.
func (s *SnapshotReader) ReadSnapshot(ctx context.Context) (*repository.Snapshot, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot tasks: %w", err)
	}
	objectives, err := s.objectives.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot objectives: %w", err)
	}
	keyResults, err := s.objectives.ListKeyResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot key results: %w", err)
	}
	inbox, err := s.inbox.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot inbox: %w", err)
	}
	blocks, err := s.calendar.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot calendar: %w", err)
	}
	capacity, err := s.settings.GetCapacity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot capacity settings: %w", err)
	}

	return &repository.Snapshot{
		Tasks:      tasks,
		Objectives: objectives,
		KeyResults: keyResults,
		Inbox:      inbox,
		Blocks:     blocks,
		Capacity:   capacity,
		ReadAt:     s.now(),
	}, nil
}
