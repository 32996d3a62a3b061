package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/capacity"
	"github.com/ledeberg/tiller/internal/domain/conversation"
	"github.com/ledeberg/tiller/internal/domain/decision"
	"github.com/ledeberg/tiller/internal/domain/objective"
	"github.com/ledeberg/tiller/internal/domain/risk"
	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

// ConversationService defines the conversational operations needed by MCP.
type ConversationService interface {
	HandleMessage(ctx context.Context, sessionID, text string) (*conversation.Reply, error)
	ConfirmAction(ctx context.Context, actionID string, confirm bool) (*conversation.ConfirmReply, error)
}

// Planner defines the planning operations needed by MCP.
type Planner interface {
	GenerateWeeklyPlanPack(ctx context.Context, tasks []task.Task, cfg config.CapacityConfig) (*decision.PlanPack, error)
}

// RiskAssessor derives risk signals from persisted objectives.
type RiskAssessor interface {
	Assess(objectives []objective.Objective, keyResults []objective.KeyResult) risk.Signals
}

// Handler dispatches MCP commands.
type Handler struct {
	conv      ConversationService
	snapshots repository.SnapshotReader
	planner   Planner
	risks     RiskAssessor
}

// NewHandler creates a new MCP handler.
func NewHandler(conv ConversationService, snapshots repository.SnapshotReader, planner Planner, risks RiskAssessor) *Handler {
	return &Handler{
		conv:      conv,
		snapshots: snapshots,
		planner:   planner,
		risks:     risks,
	}
}

// Handle dispatches MCP requests to domain services. Mutations only ever flow
// through handle_message and confirm_action; everything else reads a snapshot.
func (h *Handler) Handle(ctx context.Context, sessionID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "handle_message":
		var req HandleMessageParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		currentSessionID := sessionID
		if currentSessionID == "" {
			currentSessionID = req.SessionID
		}
		if currentSessionID == "" {
			currentSessionID = "default"
		}
		reply, err := h.conv.HandleMessage(ctx, currentSessionID, req.Text)
		if err != nil {
			return nil, mapError(err)
		}
		return reply, nil
	case "confirm_action":
		var req ConfirmActionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		reply, err := h.conv.ConfirmAction(ctx, req.ActionID, req.Confirm)
		if err != nil {
			return nil, mapError(err)
		}
		return reply, nil
	case "get_week_plan":
		snap, err := h.snapshots.ReadSnapshot(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		pack, err := h.planner.GenerateWeeklyPlanPack(ctx, snap.Tasks, snap.Capacity)
		if err != nil {
			return nil, mapError(err)
		}
		return pack, nil
	case "get_capacity":
		snap, err := h.snapshots.ReadSnapshot(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		week := task.WeekToken(snap.ReadAt)
		weekly := capacity.Weekly(snap.Capacity)
		committed := capacity.WeeklyLoad(snap.Tasks, week, snap.Capacity.DefaultTaskMinutes)
		remaining := weekly.UsableMinutes - committed
		if remaining < 0 {
			remaining = 0
		}
		return CapacityReport{
			Week:             week,
			Config:           snap.Capacity,
			Daily:            capacity.Daily(snap.Capacity),
			Weekly:           weekly,
			CommittedMinutes: committed,
			RemainingMinutes: remaining,
			Overload:         capacity.DetectOverload(committed, weekly.UsableMinutes),
		}, nil
	case "get_risk_report":
		snap, err := h.snapshots.ReadSnapshot(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		signals := h.risks.Assess(snap.Objectives, snap.KeyResults)
		report := RiskReport{Risks: signals.Risks}
		for _, sig := range signals.Risks {
			switch sig.Risk.Level {
			case risk.LevelHigh:
				report.HighCount++
			case risk.LevelMedium:
				report.MediumCount++
			default:
				report.LowCount++
			}
		}
		return report, nil
	case "list_tasks":
		var req ListTasksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		snap, err := h.snapshots.ReadSnapshot(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		tasks := make([]task.Task, 0, len(snap.Tasks))
		for _, t := range snap.Tasks {
			if !matchesTaskFilter(t, req) {
				continue
			}
			tasks = append(tasks, t)
		}
		return ListTasksResponse{Tasks: tasks}, nil
	case "list_inbox":
		snap, err := h.snapshots.ReadSnapshot(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		items := snap.Inbox
		if items == nil {
			items = []task.InboxItem{}
		}
		return ListInboxResponse{Items: items}, nil
	case "list_blocks":
		var req ListBlocksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		snap, err := h.snapshots.ReadSnapshot(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		blocks := make([]task.CalendarBlock, 0, len(snap.Blocks))
		for _, b := range snap.Blocks {
			if req.Date != "" && b.Date != req.Date {
				continue
			}
			blocks = append(blocks, b)
		}
		return ListBlocksResponse{Blocks: blocks}, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func matchesTaskFilter(t task.Task, req ListTasksParams) bool {
	if len(req.Statuses) > 0 {
		found := false
		for _, s := range req.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if req.Week != "" && t.CommittedWeek != req.Week {
		return false
	}
	if req.ObjectiveID != "" && t.ObjectiveID != req.ObjectiveID {
		return false
	}
	if req.Kind != "" && t.Kind != req.Kind {
		return false
	}
	return true
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, out)
}

// mapError converts domain errors to API errors; anything unrecognized is an
// internal error.
func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return &APIError{Code: "INTERNAL", Message: err.Error()}
}
