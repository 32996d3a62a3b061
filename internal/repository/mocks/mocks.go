package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/objective"
	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

// TaskRepository is a mock for repository.TaskRepository.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskRepository) List(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ObjectiveRepository is a mock for repository.ObjectiveRepository.
type ObjectiveRepository struct {
	mock.Mock
}

func (m *ObjectiveRepository) Create(ctx context.Context, obj *objective.Objective) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *ObjectiveRepository) Get(ctx context.Context, id string) (*objective.Objective, error) {
	args := m.Called(ctx, id)
	if obj, ok := args.Get(0).(*objective.Objective); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ObjectiveRepository) Update(ctx context.Context, obj *objective.Objective) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *ObjectiveRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ObjectiveRepository) List(ctx context.Context) ([]objective.Objective, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]objective.Objective); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ObjectiveRepository) CreateKeyResult(ctx context.Context, kr *objective.KeyResult) error {
	args := m.Called(ctx, kr)
	return args.Error(0)
}

func (m *ObjectiveRepository) UpdateKeyResult(ctx context.Context, kr *objective.KeyResult) error {
	args := m.Called(ctx, kr)
	return args.Error(0)
}

func (m *ObjectiveRepository) ListKeyResults(ctx context.Context) ([]objective.KeyResult, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]objective.KeyResult); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// InboxRepository is a mock for repository.InboxRepository.
type InboxRepository struct {
	mock.Mock
}

func (m *InboxRepository) Create(ctx context.Context, item *task.InboxItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *InboxRepository) Get(ctx context.Context, id string) (*task.InboxItem, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*task.InboxItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InboxRepository) List(ctx context.Context, includeProcessed bool) ([]task.InboxItem, error) {
	args := m.Called(ctx, includeProcessed)
	if list, ok := args.Get(0).([]task.InboxItem); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InboxRepository) MarkProcessed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CalendarRepository is a mock for repository.CalendarRepository.
type CalendarRepository struct {
	mock.Mock
}

func (m *CalendarRepository) Create(ctx context.Context, block *task.CalendarBlock) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *CalendarRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CalendarRepository) ListByDate(ctx context.Context, date string) ([]task.CalendarBlock, error) {
	args := m.Called(ctx, date)
	if list, ok := args.Get(0).([]task.CalendarBlock); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CalendarRepository) List(ctx context.Context) ([]task.CalendarBlock, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]task.CalendarBlock); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SettingsRepository is a mock for repository.SettingsRepository.
type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) GetCapacity(ctx context.Context) (config.CapacityConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(config.CapacityConfig), args.Error(1)
}

func (m *SettingsRepository) SetCapacity(ctx context.Context, cfg config.CapacityConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// ActionRepository is a mock for repository.ActionRepository.
type ActionRepository struct {
	mock.Mock
}

func (m *ActionRepository) Create(ctx context.Context, rec *repository.PendingActionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *ActionRepository) Get(ctx context.Context, id string) (*repository.PendingActionRecord, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*repository.PendingActionRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActionRepository) TransitionStatus(ctx context.Context, id string, from, to repository.ActionStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

// SnapshotReader is a mock for repository.SnapshotReader.
type SnapshotReader struct {
	mock.Mock
}

func (m *SnapshotReader) ReadSnapshot(ctx context.Context) (*repository.Snapshot, error) {
	args := m.Called(ctx)
	if snap, ok := args.Get(0).(*repository.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}
