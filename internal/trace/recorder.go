package trace

import "github.com/roach88/efsm/internal/fsm"

// Event is one observed transition.
type Event struct {
	Seq   int64       `json:"seq"`
	Token string      `json:"token"`
	Pre   fsm.StateID `json:"pre"`
	Msg   fsm.MsgType `json:"msg"`
	Post  fsm.StateID `json:"post"`
}

// Recorder accumulates transitions in memory, in observation order.
//
// Like the engine it observes, a Recorder is single-threaded: it appends
// from inside RunPass and is read between passes.
type Recorder struct {
	clock  *Clock
	token  string
	events []Event
}

// NewRecorder creates a recorder stamping events with the given run token.
func NewRecorder(token string) *Recorder {
	return &Recorder{
		clock: NewClock(),
		token: token,
	}
}

// Token returns the recorder's run token.
func (r *Recorder) Token() string {
	return r.token
}

// Observer returns the engine observer that feeds this recorder. Wire it
// with fsm.WithObserver at engine construction.
func (r *Recorder) Observer() fsm.Observer {
	return func(pre fsm.StateID, msg fsm.MsgType, post fsm.StateID) {
		r.events = append(r.events, Event{
			Seq:   r.clock.Next(),
			Token: r.token,
			Pre:   pre,
			Msg:   msg,
			Post:  post,
		})
	}
}

// Events returns the recorded events in observation order. The slice is the
// recorder's own; callers must not mutate it.
func (r *Recorder) Events() []Event {
	return r.events
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Reset drops all recorded events and rewinds the clock.
func (r *Recorder) Reset() {
	r.events = nil
	r.clock.Reset()
}
