// internal/bus/dispatcher.go
package bus

import (
	"time"

	"github.com/tamzrod/ppucbus/internal/wire"
)

// Run starts the dispatcher goroutine. Calls while a dispatcher is running
// have no effect; after Disconnect and Wait a new Connect may Run again.
//
// Each cycle sends up to MaxEventsPerCycle queued events in FIFO order, then
// polls one board of the poll list (round robin, inactive boards skipped).
// The loop ends once the link is disconnected; join it with Wait.
func (l *Link) Run() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}

	l.wg.Add(1)
	go l.dispatch()
}

// Wait blocks until the dispatcher goroutine has exited.
func (l *Link) Wait() {
	l.wg.Wait()
}

func (l *Link) dispatch() {
	defer l.wg.Done()
	defer l.running.Store(false)

	l.log("dispatcher starting")

	poll := l.reg.PollList()
	cursor := 0

	for l.Connected() {
		sent := l.drain()

		polled := false
		if len(poll) > 0 {
			b := poll[cursor]
			cursor = (cursor + 1) % len(poll)

			if l.reg.Active(b) {
				l.PollBoard(b)
				polled = true
			}
		}

		if sent == 0 && !polled {
			l.idle()
		}
	}

	l.log("dispatcher finished")
}

// drain sends queued events until the queue is empty or the cycle budget
// is spent. Failed sends drop the event.
func (l *Link) drain() int {
	n := 0
	for n < MaxEventsPerCycle {
		select {
		case e := <-l.out:
			l.send(e)
			n++
		default:
			return n
		}
	}
	return n
}

// idle waits briefly for the next event instead of spinning on an empty
// queue.
func (l *Link) idle() {
	wait := l.opts.Timings.IdleWait
	if wait <= 0 {
		wait = time.Millisecond
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e := <-l.out:
		l.send(e)
	case <-timer.C:
	}
}

// QueueEvent hands e to the dispatcher. It never blocks: when the queue is
// full the event is dropped and false is returned.
func (l *Link) QueueEvent(e wire.Event) bool {
	l.pending.Add(1)
	select {
	case l.out <- e:
		return true
	default:
		l.pending.Add(-1)
		l.log("event queue full, dropped event %d %d %d", e.Source, e.ID, e.Value)
		return false
	}
}

// send writes a dequeued event and settles its pending count.
func (l *Link) send(e wire.Event) {
	l.SendEvent(e)
	l.pending.Add(-1)
}

// Flush waits until every queued event has been handed to the wire, the
// link closes or timeout passes. It reports whether the queue drained.
func (l *Link) Flush(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for l.pending.Load() > 0 {
		if !l.Connected() || !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}
