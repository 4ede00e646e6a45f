// internal/bus/poll.go
package bus

import "github.com/tamzrod/ppucbus/internal/wire"

// PollBoard asks board b for its pending events and reads the response
// burst until a terminator arrives or a receive attempt times out.
// A timeout is a normal end of burst, not an error.
func (l *Link) PollBoard(b BoardID) {
	l.trace("polling board %d", b)

	if !l.SendEvent(wire.Event{Source: wire.SourcePollEvents, ID: 1, Value: byte(b)}) {
		return
	}

	// The board's transceiver flips to transmit.
	sleep(l.opts.Timings.ModeSwitchDelay)

	l.dec.Reset()
	for {
		ev, err := l.receiveEvent()
		if err != nil {
			if err != errReceiveTimeout {
				l.trace("poll board %d: %v", b, err)
			}
			break
		}
		if ev.Source == wire.SourceNull {
			break
		}
		l.classify(ev)
	}

	// And back to receive.
	sleep(l.opts.Timings.ModeSwitchDelay)
}

func (l *Link) classify(ev wire.Event) {
	switch ev.Source {
	case wire.SourcePong:
		if l.reg.MarkActive(BoardID(ev.Value)) {
			l.trace("found i/o board %d", ev.Value)
		}

	case wire.SourceSwitch:
		s := SwitchState{Number: int(ev.ID), State: int(ev.Value)}
		select {
		case l.in <- s:
		default:
			l.log("switch queue full, dropped switch %d state %d", s.Number, s.State)
		}

	default:
		// Reserved for fault and status reports.
		l.trace("ignored event %d %d %d", ev.Source, ev.ID, ev.Value)
	}
}
