package fsm

import (
	"errors"
	"fmt"
)

// Sentinel errors for use-after-teardown misuse.
var (
	// ErrDestroyed is returned by operations on a destroyed automaton.
	ErrDestroyed = errors.New("automaton destroyed")
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine closed")
)

// PassErrorCode categorizes pass-level errors.
type PassErrorCode string

const (
	// ErrCodeUnhandledMessage indicates a message type with no matching
	// transition in the automaton's current state.
	ErrCodeUnhandledMessage PassErrorCode = "UNHANDLED_MESSAGE"

	// ErrCodeActionFailed indicates an action callback returned an error.
	ErrCodeActionFailed PassErrorCode = "ACTION_FAILED"

	// ErrCodeInvalidDestroy indicates an action returned Destroy on a
	// transition whose next state is not Terminal.
	ErrCodeInvalidDestroy PassErrorCode = "INVALID_DESTROY"
)

// PassError aborts a RunPass. The pass stops immediately: automatons already
// processed keep their post-transition state (no rollback), the automaton
// that failed keeps the offending message at the head of its mailbox, and
// not-yet-processed automatons are untouched. The caller must intervene
// (inspect, log, destroy) before running further passes.
type PassError struct {
	Code    PassErrorCode
	State   StateID // automaton state when the error occurred
	Msg     MsgType // message being dispatched
	Message string
	Err     error // underlying action error, if any
}

// Error implements the error interface.
func (e *PassError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (state=%d, msg=%d): %v", e.Code, e.Message, e.State, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s (state=%d, msg=%d)", e.Code, e.Message, e.State, e.Msg)
}

// Unwrap exposes the underlying action error.
func (e *PassError) Unwrap() error {
	return e.Err
}

// IsUnhandledMessage reports whether err is an UNHANDLED_MESSAGE pass error.
// Uses errors.As to handle wrapped errors.
func IsUnhandledMessage(err error) bool {
	var pe *PassError
	return errors.As(err, &pe) && pe.Code == ErrCodeUnhandledMessage
}

// IsActionFailed reports whether err is an ACTION_FAILED pass error.
func IsActionFailed(err error) bool {
	var pe *PassError
	return errors.As(err, &pe) && pe.Code == ErrCodeActionFailed
}

// IsInvalidDestroy reports whether err is an INVALID_DESTROY pass error.
func IsInvalidDestroy(err error) bool {
	var pe *PassError
	return errors.As(err, &pe) && pe.Code == ErrCodeInvalidDestroy
}
