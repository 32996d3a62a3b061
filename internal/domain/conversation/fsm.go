package conversation

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Session states. A session moves through slot collection to a single
// pending confirmation, then back to idle.
const (
	StateIdle       = "idle"
	StateCollecting = "collecting_slots"
	StateAwaiting   = "ready_for_confirmation"
	StateConfirmed  = "confirmed"
	StateCancelled  = "cancelled"
	StateExpired    = "expired"
)

const (
	eventDraft   = "draft"
	eventReady   = "ready"
	eventConfirm = "confirm"
	eventCancel  = "cancel"
	eventExpire  = "expire"
	eventReset   = "reset"
)

type sessionContext struct {
	SessionID string
}

// sessionFSM guards the legal moves of one conversation session.
type sessionFSM struct {
	interpreter *statekit.Interpreter[sessionContext]
}

func newSessionFSM(sessionID string) (*sessionFSM, error) {
	builder := statekit.NewMachine[sessionContext]("confirmation-session").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(sessionContext{SessionID: sessionID})

	builder.State(StateIdle).
		On(eventDraft).Target(StateCollecting).
		On(eventReady).Target(StateAwaiting).
		Done()

	builder.State(StateCollecting).
		On(eventReady).Target(StateAwaiting).
		On(eventCancel).Target(StateCancelled).
		Done()

	builder.State(StateAwaiting).
		On(eventConfirm).Target(StateConfirmed).
		On(eventCancel).Target(StateCancelled).
		On(eventExpire).Target(StateExpired).
		Done()

	builder.State(StateConfirmed).
		On(eventReset).Target(StateIdle).
		Done()

	builder.State(StateCancelled).
		On(eventReset).Target(StateIdle).
		Done()

	builder.State(StateExpired).
		On(eventReset).Target(StateIdle).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build session machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &sessionFSM{interpreter: interpreter}, nil
}

// fire sends an event and reports an error when the machine refused it.
// statekit leaves the state unchanged on an invalid event, so the
// before/after comparison is the rejection signal.
func (f *sessionFSM) fire(event string) error {
	before := f.current()
	f.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if after := f.current(); after != before {
		return nil
	}
	return fmt.Errorf("event %q is not valid in state %q", event, before)
}

func (f *sessionFSM) current() string {
	return string(f.interpreter.State().Value)
}
