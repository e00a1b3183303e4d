// Package fsm implements an event-driven finite state automaton engine.
//
// A single compiled transition table is shared by any number of automatons.
// Each automaton owns a FIFO mailbox; messages delivered with Send are never
// processed synchronously - they wait for an explicit RunPass, so side effects
// from one automaton's action (including sends to itself or others) are
// deferred to the next pass.
//
// ARCHITECTURE:
//
// Single-Threaded Pass Loop:
// The engine performs all work inside RunPass, invoked by the caller. This
// ensures:
// - Predictable action invocation order (mailbox FIFO, group order)
// - The active set iterated by a pass is a fixed snapshot
// - Simple reasoning about causality ("sent this pass, seen next pass")
//
// Pass Processing Flow:
// 1. Every automaton in the New group resolves to Active (mailbox non-empty)
//    or Inactive (mailbox empty)
// 2. Each automaton that is Active at that point drains its mailbox against
//    the transition table, invoking actions and advancing state
// 3. A drained automaton returns to New and resolves to Inactive next pass
// 4. RunPass reports MoreWork while the New group is non-empty
//
// The engine has no internal retry loop and never iterates to a fixed point
// on its own: how many passes run per unit of external work is entirely the
// caller's decision. Building an event loop around the engine (timers, fds,
// polling) is likewise the caller's responsibility; the engine only exposes
// "deliver a message" and "run one pass".
//
// CRITICAL PATTERNS:
//
// Deferred Visibility:
// Automatons created or re-activated during a pass are parked in the New
// group and are not visible to that pass's active sweep. Dependent logic may
// assume "things sent this pass are seen next pass".
//
// Single Logical Thread:
// The engine contains no synchronization. Send, RunPass, NewAutomaton,
// Destroy and Close must all be invoked from one logical thread of control.
// Concurrent use is undefined behavior.
package fsm
