package fsm

import "log/slog"

// Observer is an optional callback invoked before each transition's action,
// with the pre-state, the message type, and the transition's target. Meant
// for tracing and observability; it cannot veto or alter the transition.
type Observer func(pre StateID, msg MsgType, post StateID)

// PassResult is what a completed RunPass reports.
type PassResult int

const (
	// Idle means no automaton awaits the next pass.
	Idle PassResult = iota
	// MoreWork means something was created or re-activated during this
	// pass and a further pass has work to do.
	MoreWork
)

// String implements fmt.Stringer.
func (r PassResult) String() string {
	if r == MoreWork {
		return "more_work"
	}
	return "idle"
}

// Engine owns one compiled table and every automaton created against it.
//
// Automatons live in a dense id-keyed arena; the three membership groups are
// ordered id slices rather than intrusive pointer lists, so a stale handle
// can never dangle into a group.
//
// INVARIANTS:
//   - every live automaton's id is in exactly one of queued/active/inactive
//   - group order is append order; passes sweep groups in that order
//   - the table never changes after NewEngine
type Engine struct {
	table *Table

	nextID uint64
	autos  map[uint64]*Automaton

	// Membership groups, ordered. "queued" holds New automatons.
	queued   []uint64
	active   []uint64
	inactive []uint64

	observer Observer
	closed   bool
}

// Option configures an engine at construction. No dynamic registration
// happens after that.
type Option func(*Engine)

// WithObserver registers a transition observer.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// NewEngine creates an engine around a compiled table.
func NewEngine(table *Table, opts ...Option) *Engine {
	e := &Engine{
		table: table,
		autos: make(map[uint64]*Automaton),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the engine's compiled table.
func (e *Engine) Table() *Table {
	return e.table
}

// Len returns the number of live automatons across all groups.
func (e *Engine) Len() int {
	return len(e.autos)
}

// NewAutomaton creates an automaton at the given initial state.
//
// It starts in the New group and resolves to Active or Inactive at the start
// of the next pass exactly like any other New automaton; there is no
// special-case creation path in the dispatcher.
func (e *Engine) NewAutomaton(initial StateID, opts ...AutomatonOption) (*Automaton, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if initial < 0 || int(initial) >= len(e.table.states) {
		return nil, &CompileError{Field: "current", Message: "initial state out of range"}
	}

	e.nextID++
	a := &Automaton{
		engine: e,
		id:     e.nextID,
		state:  initial,
		status: statusNew,
	}
	for _, opt := range opts {
		opt(a)
	}

	e.autos[a.id] = a
	e.queued = append(e.queued, a.id)

	slog.Debug("automaton created", "id", a.id, "state", initial)

	return a, nil
}

// reclassify applies the single membership-transition operation:
//
//	Active|Inactive -> New   (a message arrived)
//	New -> Active            (mailbox non-empty at pass start)
//	New -> Inactive          (mailbox empty at pass start)
func (e *Engine) reclassify(a *Automaton) {
	switch a.status {
	case statusActive:
		a.status = statusNew
		e.active = removeID(e.active, a.id)
		e.queued = append(e.queued, a.id)

	case statusInactive:
		a.status = statusNew
		e.inactive = removeID(e.inactive, a.id)
		e.queued = append(e.queued, a.id)

	case statusNew:
		e.queued = removeID(e.queued, a.id)
		if a.mbox.len() > 0 {
			a.status = statusActive
			e.active = append(e.active, a.id)
		} else {
			a.status = statusInactive
			e.inactive = append(e.inactive, a.id)
		}
	}
}

// RunPass performs one synchronous sweep:
//
//  1. Every New automaton resolves to Active or Inactive. This captures
//     automatons created or re-activated since the previous pass, including
//     inside that pass's actions.
//  2. Every automaton Active at that point - a fixed snapshot - drains its
//     mailbox (runOne). Automatons activated by side effects during this
//     pass wait for the next one.
//  3. On any error the pass aborts immediately with no rollback.
//  4. Otherwise it reports MoreWork iff the New group is non-empty, i.e.
//     something awaits the next pass.
func (e *Engine) RunPass() (PassResult, error) {
	if e.closed {
		return Idle, ErrClosed
	}

	queued := append([]uint64(nil), e.queued...)
	for _, id := range queued {
		if a, ok := e.autos[id]; ok && a.status == statusNew {
			e.reclassify(a)
		}
	}

	snapshot := append([]uint64(nil), e.active...)
	for _, id := range snapshot {
		a, ok := e.autos[id]
		if !ok {
			// Destroyed by an earlier automaton's action this pass.
			continue
		}
		if err := e.runOne(a); err != nil {
			slog.Debug("pass aborted", "id", a.id, "error", err)
			return Idle, err
		}
	}

	if len(e.queued) > 0 {
		return MoreWork, nil
	}
	return Idle, nil
}

// runOne drains one automaton's mailbox against the table.
//
// Only the messages present when the drain starts are processed; anything an
// action sends - to this automaton or any other - waits for the next pass. A
// message is popped only after its transition fully applies, so an aborted
// pass leaves the offending message at the head of the mailbox.
func (e *Engine) runOne(a *Automaton) error {
	pending := a.mbox.len()
	for i := 0; i < pending; i++ {
		m := a.mbox.peek()

		tr := e.table.lookup(a.state, m.msg)
		if tr == nil {
			return &PassError{
				Code:    ErrCodeUnhandledMessage,
				State:   a.state,
				Msg:     m.msg,
				Message: "no transition for message in current state",
			}
		}

		if e.observer != nil {
			e.observer(a.state, m.msg, tr.next)
		}

		outcome, err := tr.action(a, a.hint, tr.data, m.msg, m.payload)
		if err != nil {
			return &PassError{
				Code:    ErrCodeActionFailed,
				State:   a.state,
				Msg:     m.msg,
				Message: "action failed",
				Err:     err,
			}
		}
		if a.destroyed {
			// The action destroyed its own automaton explicitly; the
			// mailbox is already flushed.
			return nil
		}
		if outcome == Destroy {
			if tr.next != Terminal {
				return &PassError{
					Code:    ErrCodeInvalidDestroy,
					State:   a.state,
					Msg:     m.msg,
					Message: "destroy requested on a non-terminal transition",
				}
			}
			e.destroyAutomaton(a)
			return nil
		}

		a.state = tr.next
		a.mbox.pop()
	}

	// Drained without destruction. Back to New; the next pass resolves it
	// to Inactive unless something was sent meanwhile. A mid-drain send to
	// this automaton already moved it there.
	if a.status == statusActive {
		e.reclassify(a)
	}

	return nil
}

// destroyAutomaton is the single terminal path. Idempotent.
func (e *Engine) destroyAutomaton(a *Automaton) {
	if a.destroyed {
		return
	}
	a.destroyed = true

	switch a.status {
	case statusNew:
		e.queued = removeID(e.queued, a.id)
	case statusActive:
		e.active = removeID(e.active, a.id)
	case statusInactive:
		e.inactive = removeID(e.inactive, a.id)
	}
	delete(e.autos, a.id)

	dropped := a.mbox.len()
	a.mbox.flush()

	if a.dfn != nil {
		a.dfn(a.hint)
	}

	slog.Debug("automaton destroyed", "id", a.id, "state", a.state, "dropped_messages", dropped)
}

// Close destroys every remaining automaton - New, Active and Inactive, in
// that group order - invoking each destroy func once, then marks the engine
// unusable. Close is idempotent.
func (e *Engine) Close() {
	if e.closed {
		return
	}

	for _, group := range [][]uint64{e.queued, e.active, e.inactive} {
		ids := append([]uint64(nil), group...)
		for _, id := range ids {
			if a, ok := e.autos[id]; ok {
				e.destroyAutomaton(a)
			}
		}
	}

	e.closed = true
	slog.Debug("engine closed")
}

// removeID deletes the first occurrence of id, preserving order.
func removeID(ids []uint64, id uint64) []uint64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
