package fsm

// status is an automaton's membership group. Every live automaton is in
// exactly one group at all times.
type status int

const (
	// statusNew marks a freshly created automaton, or one that received a
	// message while Active or Inactive. New is a staging area: it resolves
	// to Active or Inactive at the start of the next pass, never mid-pass,
	// so message delivery can't mutate the set a pass is iterating.
	statusNew status = iota + 1
	// statusActive marks an automaton with pending messages at the start
	// of the current pass.
	statusActive
	// statusInactive marks an automaton with an empty mailbox, not
	// scheduled.
	statusInactive
)

// String implements fmt.Stringer for logging.
func (s status) String() string {
	switch s {
	case statusNew:
		return "new"
	case statusActive:
		return "active"
	case statusInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// DestroyFunc runs exactly once when its automaton is destroyed, receiving
// the automaton's hint.
type DestroyFunc func(hint any)

// Automaton is one runtime instance traversing the engine's shared table.
//
// Automatons are created with Engine.NewAutomaton and owned by that engine.
// The handle must not be used after destruction; operations on a destroyed
// automaton return ErrDestroyed.
type Automaton struct {
	engine *Engine
	id     uint64

	state StateID
	hint  any
	dfn   DestroyFunc

	mbox      mailbox
	status    status
	destroyed bool
}

// AutomatonOption configures a new automaton.
type AutomatonOption func(*Automaton)

// WithHint attaches opaque user data, passed to every action and to the
// destroy func. The engine never inspects it.
func WithHint(hint any) AutomatonOption {
	return func(a *Automaton) {
		a.hint = hint
	}
}

// WithDestroyFunc registers a callback invoked exactly once on destruction.
func WithDestroyFunc(fn DestroyFunc) AutomatonOption {
	return func(a *Automaton) {
		a.dfn = fn
	}
}

// State returns the automaton's current state index.
func (a *Automaton) State() StateID {
	return a.state
}

// Hint returns the opaque user data attached at creation.
func (a *Automaton) Hint() any {
	return a.hint
}

// Destroyed reports whether the automaton has been torn down.
func (a *Automaton) Destroyed() bool {
	return a.destroyed
}

// Pending returns the number of messages waiting in the mailbox.
func (a *Automaton) Pending() int {
	return a.mbox.len()
}

// Send enqueues a message; it is never processed synchronously. The message
// waits in the mailbox until a later RunPass drains it.
//
// The payload is opaque and caller-owned for its entire lifetime; the engine
// passes it through to the matching action untouched and never frees or
// retains it past consumption.
//
// Sending to an Active or Inactive automaton immediately reclassifies it to
// New, which the next pass resolves back to Active. Delivery is FIFO per
// automaton.
func (a *Automaton) Send(msg MsgType, payload any) error {
	if a.destroyed {
		return ErrDestroyed
	}
	if a.engine.closed {
		return ErrClosed
	}

	a.mbox.push(message{msg: msg, payload: payload})

	if a.status == statusActive || a.status == statusInactive {
		a.engine.reclassify(a)
	}

	return nil
}

// Destroy tears the automaton down: it leaves its membership group, the
// mailbox is flushed (pending payloads are dropped unprocessed, never
// freed), and the destroy func - if any - runs once with the hint.
//
// Destroy is idempotent; destroying an already-destroyed automaton is a
// no-op.
func (a *Automaton) Destroy() {
	a.engine.destroyAutomaton(a)
}
