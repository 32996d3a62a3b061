// Package conversation runs the confirmation loop: parse a message into an
// intent, collect missing slots one question at a time, preview the mutation,
// and execute it only after an explicit confirmation of a still-fresh action.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/executor"
	"github.com/ledeberg/tiller/internal/domain/guardrail"
	"github.com/ledeberg/tiller/internal/domain/intent"
	"github.com/ledeberg/tiller/internal/domain/preview"
	"github.com/ledeberg/tiller/internal/repository"
)

// DefaultTTL is how long a pending action stays confirmable.
const DefaultTTL = 5 * time.Minute

const helpText = "I can add, update, complete, delete or commit tasks, create objectives, " +
	"update key results, process inbox items, block calendar time, plan or rebalance your week, " +
	"and change capacity settings. What would you like to do?"

// Service drives conversation sessions. Each session holds at most one
// draft being slot-filled or one pending action awaiting confirmation.
type Service struct {
	snapshots repository.SnapshotReader
	actions   repository.ActionRepository
	exec      *executor.Executor
	planner   preview.Planner
	parser    Parser
	areas     []intent.Area
	logger    *slog.Logger
	now       func() time.Time
	ttl       time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	mu      sync.Mutex
	fsm     *sessionFSM
	draft   *intent.Draft
	pending string // action id awaiting confirmation
}

// NewService creates the conversation service. A nil parser falls back to
// the keyword parser, a nil clock to wall time, a zero ttl to DefaultTTL.
func NewService(
	snapshots repository.SnapshotReader,
	actions repository.ActionRepository,
	exec *executor.Executor,
	planner preview.Planner,
	parser Parser,
	logger *slog.Logger,
	now func() time.Time,
	ttl time.Duration,
) *Service {
	if parser == nil {
		parser = NewKeywordParser()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		snapshots: snapshots,
		actions:   actions,
		exec:      exec,
		planner:   planner,
		parser:    parser,
		areas:     intent.DefaultAreas(),
		logger:    logger,
		now:       now,
		ttl:       ttl,
		sessions:  make(map[string]*sessionState),
	}
}

func (s *Service) session(id string) (*sessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[id]; ok {
		return st, nil
	}
	fsm, err := newSessionFSM(id)
	if err != nil {
		return nil, err
	}
	st := &sessionState{fsm: fsm}
	s.sessions[id] = st
	return st, nil
}

func (s *Service) clearSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// HandleMessage processes one user message for a session.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	st, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	expiredNote, err := s.lazyExpire(ctx, sessionID, st)
	if err != nil {
		return nil, err
	}

	reply, err := s.handle(ctx, sessionID, st, text)
	if err != nil {
		return nil, err
	}
	if expiredNote != "" {
		reply.Response = expiredNote + " " + reply.Response
	}
	return reply, nil
}

// lazyExpire times out the session's pending action on the next touch. There
// is no background sweeper; expiry is checked whenever the action is read.
func (s *Service) lazyExpire(ctx context.Context, sessionID string, st *sessionState) (string, error) {
	if st.pending == "" || st.fsm.current() != StateAwaiting {
		return "", nil
	}
	rec, err := s.actions.Get(ctx, st.pending)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			st.reset(sessionID)
			return "", nil
		}
		return "", fmt.Errorf("failed to load pending action: %w", err)
	}
	if rec.Status == repository.ActionPending && s.now().After(rec.ExpiresAt) {
		if _, err := s.actions.TransitionStatus(ctx, rec.ID, repository.ActionPending, repository.ActionExpired); err != nil {
			return "", fmt.Errorf("failed to expire action: %w", err)
		}
		st.reset(sessionID)
		return "The previous pending action expired.", nil
	}
	if rec.Status != repository.ActionPending {
		st.reset(sessionID)
	}
	return "", nil
}

func (s *Service) handle(ctx context.Context, sessionID string, st *sessionState, text string) (*Reply, error) {
	state := st.fsm.current()
	lower := strings.ToLower(text)

	switch {
	case isAffirmation(lower):
		if state == StateAwaiting && st.pending != "" {
			return s.resolvePending(ctx, st, true)
		}
		return &Reply{Response: "There's nothing waiting for confirmation.", State: st.fsm.current()}, nil

	case isNegation(lower):
		switch {
		case state == StateAwaiting && st.pending != "":
			return s.resolvePending(ctx, st, false)
		case state == StateCollecting:
			st.reset(sessionID)
			return &Reply{Response: "Okay, I dropped that request.", State: StateIdle}, nil
		}
		return &Reply{Response: "Nothing to cancel.", State: st.fsm.current()}, nil
	}

	if state == StateCollecting && st.draft != nil {
		return s.fillSlot(ctx, sessionID, st, text)
	}

	// A fresh request while another action is pending supersedes it.
	if state == StateAwaiting && st.pending != "" {
		if _, err := s.actions.TransitionStatus(ctx, st.pending, repository.ActionPending, repository.ActionCancelled); err != nil {
			return nil, fmt.Errorf("failed to supersede pending action: %w", err)
		}
		st.reset(sessionID)
	}

	draft, ok, err := s.parser.Parse(ctx, text, s.now())
	if err != nil {
		s.logger.Warn("parser failed, message not understood", "error", err)
		ok = false
	}
	if !ok || draft == nil {
		return &Reply{Response: helpText, State: st.fsm.current()}, nil
	}

	if missing := draft.Missing(); len(missing) > 0 {
		st.draft = draft
		if err := st.fsm.fire(eventDraft); err != nil {
			return nil, err
		}
		return &Reply{
			Response: intent.Question(draft.Kind, missing[0]),
			State:    st.fsm.current(),
		}, nil
	}

	return s.propose(ctx, sessionID, st, draft)
}

// fillSlot treats the message as the answer to the single outstanding
// question. A bad answer re-asks the same question and consumes nothing.
func (s *Service) fillSlot(ctx context.Context, sessionID string, st *sessionState, text string) (*Reply, error) {
	missing := st.draft.Missing()
	if len(missing) == 0 {
		return s.propose(ctx, sessionID, st, st.draft)
	}
	slot := missing[0]

	if err := st.draft.Fill(slot, text, s.now(), s.areas); err != nil {
		if errors.Is(err, intent.ErrInvalidSlot) {
			return &Reply{
				Response: "I didn't catch that. " + intent.Question(st.draft.Kind, slot),
				State:    st.fsm.current(),
			}, nil
		}
		return nil, err
	}

	if remaining := st.draft.Missing(); len(remaining) > 0 {
		return &Reply{
			Response: intent.Question(st.draft.Kind, remaining[0]),
			State:    st.fsm.current(),
		}, nil
	}
	return s.propose(ctx, sessionID, st, st.draft)
}

// propose previews the completed intent and stores it as a pending action.
func (s *Service) propose(ctx context.Context, sessionID string, st *sessionState, draft *intent.Draft) (*Reply, error) {
	snap, err := s.snapshots.ReadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if draft.Kind == intent.KindSetCapacity && draft.Capacity != nil {
		merged := mergeCapacity(snap.Capacity, *draft.Capacity)
		draft.Capacity = &merged
	}

	in, err := draft.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build intent: %w", err)
	}

	builder := preview.NewBuilder(snap, s.planner, s.now)
	p, err := builder.Build(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to build preview: %w", err)
	}

	if !p.Actionable {
		st.reset(sessionID)
		response := p.Summary
		if len(p.Candidates) > 0 {
			response += " Options: " + strings.Join(p.Candidates, "; ")
		}
		return &Reply{Response: response, Preview: p, State: StateIdle}, nil
	}

	previewJSON, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize preview: %w", err)
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	rec := &repository.PendingActionRecord{
		ID:          p.ID,
		SessionID:   sessionID,
		Status:      repository.ActionPending,
		PreviewJSON: previewJSON,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}
	if err := s.actions.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store pending action: %w", err)
	}

	if err := st.fsm.fire(eventReady); err != nil {
		return nil, err
	}
	st.pending = p.ID
	st.draft = nil

	s.logger.Info("pending action created",
		"action_id", p.ID, "session_id", sessionID, "intent", p.Intent, "expires_at", expiresAt)

	return &Reply{
		Response:             p.Summary + ". Confirm? (yes/no)",
		ActionID:             p.ID,
		Preview:              p,
		RequiresConfirmation: true,
		ExpiresAt:            &expiresAt,
		State:                st.fsm.current(),
	}, nil
}

func (s *Service) resolvePending(ctx context.Context, st *sessionState, confirm bool) (*Reply, error) {
	cr, err := s.ConfirmAction(ctx, st.pending, confirm)
	if err != nil {
		return nil, err
	}
	return &Reply{Response: cr.Response, State: StateIdle}, nil
}

// ConfirmAction settles a pending action. The status compare-and-set is the
// only writer of the action's terminal state, so two racing confirmations
// resolve to exactly one execution.
func (s *Service) ConfirmAction(ctx context.Context, actionID string, confirm bool) (*ConfirmReply, error) {
	rec, err := s.actions.Get(ctx, actionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, fmt.Errorf("failed to load action: %w", err)
	}
	defer s.clearSession(rec.SessionID)

	if rec.Status != repository.ActionPending {
		return resolvedReply(rec.Status), nil
	}

	if s.now().After(rec.ExpiresAt) {
		if _, err := s.actions.TransitionStatus(ctx, actionID, repository.ActionPending, repository.ActionExpired); err != nil {
			return nil, fmt.Errorf("failed to expire action: %w", err)
		}
		return &ConfirmReply{
			Outcome:  OutcomeExpired,
			Response: "That action expired before it was confirmed. Ask again if you still want it.",
		}, nil
	}

	if !confirm {
		ok, err := s.actions.TransitionStatus(ctx, actionID, repository.ActionPending, repository.ActionCancelled)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel action: %w", err)
		}
		if !ok {
			return s.reloadResolved(ctx, actionID)
		}
		return &ConfirmReply{Outcome: OutcomeCancelled, Response: "Cancelled, nothing was changed."}, nil
	}

	var p preview.Preview
	if err := json.Unmarshal(rec.PreviewJSON, &p); err != nil {
		return nil, fmt.Errorf("failed to decode stored preview: %w", err)
	}

	// Re-validate against fresh state before claiming the action.
	snap, err := s.snapshots.ReadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if verdict := guardrail.Check(snap, &p); !verdict.Allowed {
		if _, err := s.actions.TransitionStatus(ctx, actionID, repository.ActionPending, repository.ActionCancelled); err != nil {
			return nil, fmt.Errorf("failed to cancel vetoed action: %w", err)
		}
		s.logger.Info("action vetoed by guardrail", "action_id", actionID, "reason", verdict.Reason)
		return &ConfirmReply{Outcome: OutcomeVetoed, Response: verdict.Reason}, nil
	}

	ok, err := s.actions.TransitionStatus(ctx, actionID, repository.ActionPending, repository.ActionConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to claim action: %w", err)
	}
	if !ok {
		return s.reloadResolved(ctx, actionID)
	}

	result, err := s.exec.Apply(ctx, p.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to execute action %s: %w", actionID, err)
	}

	s.logger.Info("action executed", "action_id", actionID, "intent", p.Intent)
	return &ConfirmReply{
		Outcome:  OutcomeExecuted,
		Response: "Done. " + p.Summary + ".",
		Result:   result,
	}, nil
}

// reloadResolved reports the terminal state another confirmation reached
// first.
func (s *Service) reloadResolved(ctx context.Context, actionID string) (*ConfirmReply, error) {
	rec, err := s.actions.Get(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload action: %w", err)
	}
	return resolvedReply(rec.Status), nil
}

func resolvedReply(status repository.ActionStatus) *ConfirmReply {
	switch status {
	case repository.ActionConfirmed:
		return &ConfirmReply{Outcome: OutcomeAlreadyResolved, Response: "That action was already executed."}
	case repository.ActionCancelled:
		return &ConfirmReply{Outcome: OutcomeAlreadyResolved, Response: "That action was already cancelled."}
	case repository.ActionExpired:
		return &ConfirmReply{Outcome: OutcomeExpired, Response: "That action expired before it was confirmed."}
	}
	return &ConfirmReply{Outcome: OutcomeAlreadyResolved, Response: "That action is no longer pending."}
}

// reset replaces the session machine, returning the session to idle and
// dropping any draft or pending reference. It never fails: a fresh machine
// for an already-validated definition cannot error.
func (st *sessionState) reset(sessionID string) {
	if fsm, err := newSessionFSM(sessionID); err == nil {
		st.fsm = fsm
	}
	st.draft = nil
	st.pending = ""
}

func mergeCapacity(current, override config.CapacityConfig) config.CapacityConfig {
	merged := current
	if override.WorkHoursPerDay > 0 {
		merged.WorkHoursPerDay = override.WorkHoursPerDay
	}
	if override.BufferPercent > 0 {
		merged.BufferPercent = override.BufferPercent
	}
	if override.BreakMinutesPerDay > 0 {
		merged.BreakMinutesPerDay = override.BreakMinutesPerDay
	}
	if override.WorkDaysPerWeek > 0 {
		merged.WorkDaysPerWeek = override.WorkDaysPerWeek
	}
	if override.DefaultTaskMinutes > 0 {
		merged.DefaultTaskMinutes = override.DefaultTaskMinutes
	}
	if override.DayStartHour > 0 {
		merged.DayStartHour = override.DayStartHour
	}
	if override.DayEndHour > 0 {
		merged.DayEndHour = override.DayEndHour
	}
	return merged.Clamp()
}

func isAffirmation(t string) bool {
	switch t {
	case "yes", "y", "yep", "yeah", "confirm", "confirmed", "ok", "okay", "do it", "go ahead", "sí", "si", "confirmo", "dale":
		return true
	}
	return false
}

func isNegation(t string) bool {
	switch t {
	case "no", "n", "nope", "cancel", "stop", "never mind", "nevermind", "cancela", "cancelar", "no gracias":
		return true
	}
	return false
}
