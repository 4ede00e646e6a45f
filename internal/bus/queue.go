// internal/bus/queue.go
package bus

// RegisterSwitchBoard adds a board to the switch-poll list. Call before Run.
func (l *Link) RegisterSwitchBoard(number uint8) error {
	return l.reg.RegisterPoll(BoardID(number))
}

// ActiveBoards lists the boards that answered discovery.
func (l *Link) ActiveBoards() []BoardID {
	return l.reg.ActiveBoards()
}

// BoardActive reports whether board b answered discovery.
func (l *Link) BoardActive(b BoardID) bool {
	return l.reg.Active(b)
}

// PollList returns the registered switch boards in poll order.
func (l *Link) PollList() []BoardID {
	return l.reg.PollList()
}

// NextSwitchState pops the oldest observed switch transition without
// blocking.
func (l *Link) NextSwitchState() (SwitchState, bool) {
	select {
	case s := <-l.in:
		return s, true
	default:
		return SwitchState{}, false
	}
}

// Switches exposes the inbound queue for consumers that want to block.
// The channel is never closed.
func (l *Link) Switches() <-chan SwitchState {
	return l.in
}
