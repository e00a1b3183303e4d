package fsm

// message is the envelope the engine owns. The payload inside it is the
// caller's; the engine only ever drops the envelope.
type message struct {
	msg     MsgType
	payload any
}

// mailbox is a FIFO queue of pending messages scoped to one automaton.
//
// The queue is unbounded so cascading sends from actions never block or
// fail. It is not synchronized: the engine is single-threaded by contract.
type mailbox struct {
	msgs []message
}

// push appends a message to the tail.
func (m *mailbox) push(msg message) {
	m.msgs = append(m.msgs, msg)
}

// peek returns the head without removing it. Caller must check len first.
func (m *mailbox) peek() message {
	return m.msgs[0]
}

// pop removes the head. The dispatcher pops a message only after its
// transition has fully applied, so an aborted pass leaves the message queued.
func (m *mailbox) pop() {
	// Nil out the slot so the payload is collectable while the backing
	// array lives on.
	m.msgs[0] = message{}
	if len(m.msgs) == 1 {
		m.msgs = m.msgs[:0]
	} else {
		m.msgs = m.msgs[1:]
	}
}

// len returns the number of queued messages.
func (m *mailbox) len() int {
	return len(m.msgs)
}

// flush discards every queued message. Used on automaton destruction; the
// payloads themselves are caller-owned and untouched.
func (m *mailbox) flush() {
	m.msgs = nil
}
