// internal/bus/link.go
package bus

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tamzrod/ppucbus/internal/serialport"
	"github.com/tamzrod/ppucbus/internal/wire"
)

// Line parameters. Fixed by the board firmware.
const (
	BaudRate = 115200
	DataBits = 8
	StopBits = 1
	Parity   = "N"
)

// Default queue capacities.
const (
	DefaultOutboundCapacity = 128
	DefaultInboundCapacity  = 256
)

// Tap observes link traffic. Sent receives every frame written to the wire
// (the slice is only valid during the call, and a write that outlived its
// timeout reports late); Received every decoded event.
// Called from both the caller goroutine and the dispatcher goroutine.
type Tap interface {
	Sent(frame []byte)
	Received(e wire.Event)
}

// Options configures a Link.
type Options struct {
	// Open opens the serial device. Required.
	Open serialport.Opener

	// RS485 is passed through to the serial driver.
	RS485 serialport.RS485Config

	Timings Timings

	OutboundCapacity int
	InboundCapacity  int

	Tap Tap
}

type portHandle struct {
	p serialport.Port
}

// Link owns the serial connection to the RS485 bus.
//
// Configuration records are sent synchronously and must all be sent before
// Run; once the dispatcher runs, configuration sends and queued events share
// the wire without mutual exclusion.
type Link struct {
	opts Options

	port atomic.Pointer[portHandle]

	logf  LogFunc
	debug atomic.Bool

	out chan wire.Event
	in  chan SwitchState
	reg Registry

	// receive side; used by bring-up, then by the dispatcher only
	dec   wire.Decoder
	rx    []byte
	rxBuf [64]byte

	// wgate holds one token while a write is in the driver.
	wgate chan struct{}

	// pending counts queued events not yet handed to the wire.
	pending atomic.Int64

	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a closed link.
func New(opts Options) *Link {
	if opts.OutboundCapacity <= 0 {
		opts.OutboundCapacity = DefaultOutboundCapacity
	}
	if opts.InboundCapacity <= 0 {
		opts.InboundCapacity = DefaultInboundCapacity
	}
	return &Link{
		opts:  opts,
		out:   make(chan wire.Event, opts.OutboundCapacity),
		in:    make(chan SwitchState, opts.InboundCapacity),
		wgate: make(chan struct{}, 1),
	}
}

// SetLogger installs the diagnostics callback. Call before Connect.
// A nil callback silences the link.
func (l *Link) SetLogger(fn LogFunc) { l.logf = fn }

// SetTap installs the traffic observer. Call before Connect.
func (l *Link) SetTap(t Tap) { l.opts.Tap = t }

// SetDebug toggles per-frame tracing through the logger.
func (l *Link) SetDebug(debug bool) { l.debug.Store(debug) }

func (l *Link) log(format string, args ...any) {
	if l.logf != nil {
		l.logf(format, args...)
	}
}

func (l *Link) trace(format string, args ...any) {
	if l.debug.Load() {
		l.log(format, args...)
	}
}

// Connected reports whether the link holds an open port.
func (l *Link) Connected() bool {
	return l.port.Load() != nil
}

// Connect opens device, configures 115200 8N1 without flow control, flushes
// both buffers and runs bring-up. It returns true only if the device opened
// and bring-up completed; otherwise the link is left closed.
func (l *Link) Connect(device string) (bool, error) {
	if l.Connected() {
		return false, ErrAlreadyConnected
	}
	if l.opts.Open == nil {
		return false, &ConnectionError{Device: device, Err: errNoOpener}
	}

	p, err := l.opts.Open(serialport.Config{
		Device:      device,
		BaudRate:    BaudRate,
		DataBits:    DataBits,
		StopBits:    StopBits,
		Parity:      Parity,
		ReadTimeout: l.opts.Timings.ReadTimeout,
		RS485:       l.opts.RS485,
	})
	if err != nil {
		return false, &ConnectionError{Device: device, Err: err}
	}

	if err := p.Flush(); err != nil {
		_ = p.Close()
		return false, &ConnectionError{Device: device, Err: err}
	}

	l.dec.Reset()
	l.rx = nil
	l.port.Store(&portHandle{p: p})

	if err := l.bringUp(); err != nil {
		_ = l.Disconnect()
		return false, err
	}
	return true, nil
}

// Disconnect closes the port. No-op if already closed. The dispatcher
// observes the missing handle and exits; join it with Wait.
func (l *Link) Disconnect() error {
	h := l.port.Swap(nil)
	if h == nil {
		return nil
	}
	return h.p.Close()
}

// SendEvent writes one event frame. Failures are reported, never retried.
func (l *Link) SendEvent(e wire.Event) bool {
	f := wire.EncodeEvent(e)
	if err := l.write(f[:]); err != nil {
		l.trace("error when sending event %d %d %d: %v", e.Source, e.ID, e.Value, err)
		return false
	}
	l.trace("sent event %d %d %d", e.Source, e.ID, e.Value)
	return true
}

// SendConfigRecord writes one configuration frame on the calling goroutine,
// after the fixed inter-send delay.
func (l *Link) SendConfigRecord(r wire.ConfigRecord) bool {
	sleep(l.opts.Timings.ConfigDelay)

	f := wire.EncodeConfigRecord(r)
	if err := l.write(f[:]); err != nil {
		l.trace("error when sending config record % X: %v", f[:], err)
		return false
	}
	l.trace("sent config record % X", f[:])
	return true
}

// write performs one bounded write. Writes are serialized through wgate:
// a write that outlives WriteTimeout keeps the gate until the driver
// returns, and later writes fail without touching the port until then.
// A timed-out frame may still reach the wire, but never after a later one.
func (l *Link) write(frame []byte) error {
	h := l.port.Load()
	if h == nil {
		return ErrNotConnected
	}

	timeout := l.opts.Timings.WriteTimeout
	if timeout <= 0 {
		l.wgate <- struct{}{}
		defer func() { <-l.wgate }()

		if err := writeFull(h.p, frame); err != nil {
			return err
		}
		l.tapSent(frame)
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.wgate <- struct{}{}:
	case <-timer.C:
		return ErrWriteTimeout
	}

	done := make(chan error, 1)
	go func() {
		err := writeFull(h.p, frame)
		if err == nil {
			l.tapSent(frame)
		}
		<-l.wgate
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (l *Link) tapSent(frame []byte) {
	if l.opts.Tap != nil {
		l.opts.Tap.Sent(frame)
	}
}

func writeFull(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}

// receiveEvent decodes the next valid event within the receive budget.
func (l *Link) receiveEvent() (wire.Event, error) {
	h := l.port.Load()
	if h == nil {
		return wire.Event{}, ErrNotConnected
	}

	deadline := time.Now().Add(l.opts.Timings.ReceiveBudget)
	for {
		for len(l.rx) > 0 {
			b := l.rx[0]
			l.rx = l.rx[1:]

			ev, ok, err := l.dec.Feed(b)
			if err != nil {
				l.trace("lost sync: %v", err)
			}
			if ok {
				l.trace("received event %d %d %d", ev.Source, ev.ID, ev.Value)
				if l.opts.Tap != nil {
					l.opts.Tap.Received(ev)
				}
				return ev, nil
			}
		}

		if !time.Now().Before(deadline) {
			return wire.Event{}, errReceiveTimeout
		}

		n, err := h.p.Read(l.rxBuf[:])
		if err != nil {
			return wire.Event{}, err
		}
		l.rx = l.rxBuf[:n]
	}
}
