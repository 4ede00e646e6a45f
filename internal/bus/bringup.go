// internal/bus/bringup.go
package bus

import "github.com/tamzrod/ppucbus/internal/wire"

// bringUp synchronizes every possible board to the bus, resets them and
// discovers which ones are present.
func (l *Link) bringUp() error {
	t := l.opts.Timings

	sleep(t.Settle)
	l.syncBoards()

	// End any previous game. Boards turn their outputs off, reset, and may
	// wait for a debugger before coming back.
	l.SendEvent(wire.NewEvent(wire.SourceReset))
	sleep(t.ResetGrace)

	// Boards resynchronize after their reset.
	l.syncBoards()

	sleep(t.PingDelay)
	l.SendEvent(wire.NewEvent(wire.SourcePing))
	sleep(t.PingSettle)

	for b := BoardID(0); b < MaxBoards; b++ {
		if !l.Connected() {
			return ErrNotConnected
		}
		l.trace("probe i/o board %d", b)
		l.PollBoard(b)
	}

	l.log("bus up, active boards %v", l.reg.ActiveBoards())
	return nil
}

// syncBoards sends null / hello / null to every address so each board can
// lock onto the bus timing without the host knowing which boards exist.
func (l *Link) syncBoards() {
	for b := 0; b < MaxBoards; b++ {
		l.SendEvent(wire.NewEvent(wire.SourceNull))
		l.SendConfigRecord(wire.ConfigRecord{Board: byte(b)})
		l.SendEvent(wire.NewEvent(wire.SourceNull))
	}
}
