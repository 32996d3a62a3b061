// Package executor applies a confirmed preview payload to the repositories.
// It runs only after the pending action's status has been atomically claimed,
// so each payload is applied at most once.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledeberg/tiller/internal/domain/preview"
	"github.com/ledeberg/tiller/internal/repository"
)

// Result summarizes what an execution touched.
type Result struct {
	TasksCreated   int `json:"tasks_created,omitempty"`
	TasksUpdated   int `json:"tasks_updated,omitempty"`
	TasksDeleted   int `json:"tasks_deleted,omitempty"`
	Objectives     int `json:"objectives_created,omitempty"`
	KeyResults     int `json:"key_results_updated,omitempty"`
	BlocksCreated  int `json:"blocks_created,omitempty"`
	BlocksDeleted  int `json:"blocks_deleted,omitempty"`
	InboxProcessed int `json:"inbox_processed,omitempty"`
	CapacitySet    bool `json:"capacity_set,omitempty"`
}

// Executor applies preview payloads.
type Executor struct {
	tasks      repository.TaskRepository
	objectives repository.ObjectiveRepository
	inbox      repository.InboxRepository
	calendar   repository.CalendarRepository
	settings   repository.SettingsRepository
	logger     *slog.Logger
}

// New creates an executor over the given repositories.
func New(
	tasks repository.TaskRepository,
	objectives repository.ObjectiveRepository,
	inbox repository.InboxRepository,
	calendar repository.CalendarRepository,
	settings repository.SettingsRepository,
	logger *slog.Logger,
) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		tasks:      tasks,
		objectives: objectives,
		inbox:      inbox,
		calendar:   calendar,
		settings:   settings,
		logger:     logger,
	}
}

// Apply writes every change in the payload. Deletes run last so a payload
// that both creates and deletes never observes its own deletions.
func (e *Executor) Apply(ctx context.Context, payload preview.Payload) (*Result, error) {
	var res Result

	for i := range payload.CreateTasks {
		t := payload.CreateTasks[i]
		if err := e.tasks.Create(ctx, &t); err != nil {
			return nil, fmt.Errorf("failed to create task %q: %w", t.Title, err)
		}
		res.TasksCreated++
	}

	for i := range payload.UpdateTasks {
		t := payload.UpdateTasks[i]
		if err := e.tasks.Update(ctx, &t); err != nil {
			return nil, fmt.Errorf("failed to update task %q: %w", t.Title, err)
		}
		res.TasksUpdated++
	}

	for i := range payload.CreateObjectives {
		obj := payload.CreateObjectives[i]
		if err := e.objectives.Create(ctx, &obj); err != nil {
			return nil, fmt.Errorf("failed to create objective %q: %w", obj.Title, err)
		}
		res.Objectives++
	}

	for i := range payload.UpdateKeyResults {
		kr := payload.UpdateKeyResults[i]
		if err := e.objectives.UpdateKeyResult(ctx, &kr); err != nil {
			return nil, fmt.Errorf("failed to update key result %q: %w", kr.Title, err)
		}
		res.KeyResults++
	}

	for i := range payload.CreateBlocks {
		block := payload.CreateBlocks[i]
		if err := e.calendar.Create(ctx, &block); err != nil {
			return nil, fmt.Errorf("failed to create calendar block %q: %w", block.Title, err)
		}
		res.BlocksCreated++
	}

	for _, id := range payload.MarkInboxProcessed {
		if err := e.inbox.MarkProcessed(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to mark inbox item %s processed: %w", id, err)
		}
		res.InboxProcessed++
	}

	if payload.SetCapacity != nil {
		if err := e.settings.SetCapacity(ctx, payload.SetCapacity.Clamp()); err != nil {
			return nil, fmt.Errorf("failed to persist capacity settings: %w", err)
		}
		res.CapacitySet = true
	}

	for _, id := range payload.DeleteBlockIDs {
		if err := e.calendar.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete calendar block %s: %w", id, err)
		}
		res.BlocksDeleted++
	}

	for _, id := range payload.DeleteTaskIDs {
		if err := e.tasks.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete task %s: %w", id, err)
		}
		res.TasksDeleted++
	}

	e.logger.Info("applied payload",
		"tasks_created", res.TasksCreated,
		"tasks_updated", res.TasksUpdated,
		"tasks_deleted", res.TasksDeleted,
		"blocks_created", res.BlocksCreated,
		"blocks_deleted", res.BlocksDeleted)

	return &res, nil
}
