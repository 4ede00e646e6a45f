// internal/bus/fakeport_test.go
package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/tamzrod/ppucbus/internal/serialport"
	"github.com/tamzrod/ppucbus/internal/wire"
)

var errFakeClosed = errors.New("fake port closed")

// fakeBus simulates the boards behind the serial port. Each poll request
// to a scripted board pops that board's next response burst.
type fakeBus struct {
	mu       sync.Mutex
	rx       []byte
	writes   [][]byte
	closed   bool
	bursts   map[byte][][]byte
	readWait time.Duration

	// blockWrites, when set, stalls every Write until it is closed.
	blockWrites chan struct{}
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		bursts:   make(map[byte][][]byte),
		readWait: 200 * time.Microsecond,
	}
}

// script appends response bursts for board b.
func (f *fakeBus) script(b byte, bursts ...[]byte) {
	f.mu.Lock()
	f.bursts[b] = append(f.bursts[b], bursts...)
	f.mu.Unlock()
}

func (f *fakeBus) opener() serialport.Opener {
	return func(cfg serialport.Config) (serialport.Port, error) {
		f.mu.Lock()
		f.closed = false
		f.mu.Unlock()
		return f, nil
	}
}

// serialport.Port

func (f *fakeBus) Write(p []byte) (int, error) {
	if f.blockWrites != nil {
		<-f.blockWrites
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, errFakeClosed
	}
	f.writes = append(f.writes, append([]byte(nil), p...))

	if len(p) == wire.EventFrameSize && p[1] == wire.SourcePollEvents {
		board := p[4]
		if q := f.bursts[board]; len(q) > 0 {
			f.rx = append(f.rx, q[0]...)
			f.bursts[board] = q[1:]
		}
	}
	return len(p), nil
}

func (f *fakeBus) Read(p []byte) (int, error) {
	deadline := time.Now().Add(f.readWait)
	for {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return 0, errFakeClosed
		}
		if len(f.rx) > 0 {
			n := copy(p, f.rx)
			f.rx = f.rx[n:]
			f.mu.Unlock()
			return n, nil
		}
		f.mu.Unlock()

		if !time.Now().Before(deadline) {
			return 0, nil
		}
		time.Sleep(50 * time.Microsecond)
	}
}

func (f *fakeBus) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeBus) Flush() error {
	f.mu.Lock()
	f.rx = nil
	f.mu.Unlock()
	return nil
}

// ---- inspection helpers ----

func (f *fakeBus) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// events decodes every event frame written from index from on.
func (f *fakeBus) events(from int) []wire.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []wire.Event
	for _, w := range f.writes[from:] {
		if len(w) != wire.EventFrameSize {
			continue
		}
		out = append(out, wire.Event{
			Source: w[1],
			ID:     uint16(w[2])<<8 | uint16(w[3]),
			Value:  w[4],
		})
	}
	return out
}

// polled lists the boards addressed by poll requests from index from on.
func (f *fakeBus) polled(from int) []byte {
	var out []byte
	for _, e := range f.events(from) {
		if e.Source == wire.SourcePollEvents {
			out = append(out, e.Value)
		}
	}
	return out
}

// ---- frame helpers ----

func burst(events ...wire.Event) []byte {
	var out []byte
	for _, e := range events {
		f := wire.EncodeEvent(e)
		out = append(out, f[:]...)
	}
	return out
}

func pong(b byte) wire.Event { return wire.Event{Source: wire.SourcePong, ID: 1, Value: b} }

func sw(n uint16, state byte) wire.Event {
	return wire.Event{Source: wire.SourceSwitch, ID: n, Value: state}
}

func terminator() wire.Event { return wire.NewEvent(wire.SourceNull) }

func testTimings() Timings {
	return Timings{
		ReadTimeout:     200 * time.Microsecond,
		WriteTimeout:    50 * time.Millisecond,
		ReceiveBudget:   2 * time.Millisecond,
		ModeSwitchDelay: 0,
		IdleWait:        time.Millisecond,
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(d time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
