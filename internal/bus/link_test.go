// internal/bus/link_test.go
package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/ppucbus/internal/serialport"
	"github.com/tamzrod/ppucbus/internal/wire"
)

func connectFake(t *testing.T, f *fakeBus) *Link {
	t.Helper()

	l := New(Options{Open: f.opener(), Timings: testTimings()})
	ok, err := l.Connect("/dev/fake")
	if err != nil || !ok {
		t.Fatalf("Connect() ok=%v err=%v", ok, err)
	}
	return l
}

func TestConnect_OpenFailureLeavesLinkClosed(t *testing.T) {
	openErr := errors.New("no such device")
	l := New(Options{
		Open: func(cfg serialport.Config) (serialport.Port, error) {
			return nil, openErr
		},
		Timings: testTimings(),
	})

	ok, err := l.Connect("/dev/missing")
	if ok {
		t.Fatalf("Connect() should fail")
	}

	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if ce.Device != "/dev/missing" || !errors.Is(err, openErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Connected() {
		t.Fatalf("link must stay closed")
	}
}

func TestConnect_LineParameters(t *testing.T) {
	f := newFakeBus()

	var got serialport.Config
	l := New(Options{
		Open: func(cfg serialport.Config) (serialport.Port, error) {
			got = cfg
			return f, nil
		},
		Timings: testTimings(),
	})

	if ok, err := l.Connect("/dev/ttyUSB0"); !ok || err != nil {
		t.Fatalf("Connect() ok=%v err=%v", ok, err)
	}
	defer l.Disconnect()

	if got.Device != "/dev/ttyUSB0" || got.BaudRate != 115200 || got.DataBits != 8 ||
		got.StopBits != 1 || got.Parity != "N" {
		t.Fatalf("unexpected line config: %+v", got)
	}
}

func TestConnect_Twice(t *testing.T) {
	l := connectFake(t, newFakeBus())
	defer l.Disconnect()

	if ok, err := l.Connect("/dev/fake"); ok || !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("second Connect() ok=%v err=%v", ok, err)
	}
}

func TestDisconnect_Idempotent(t *testing.T) {
	l := connectFake(t, newFakeBus())

	if err := l.Disconnect(); err != nil {
		t.Fatalf("Disconnect() err=%v", err)
	}
	if err := l.Disconnect(); err != nil {
		t.Fatalf("second Disconnect() err=%v", err)
	}
	if l.Connected() {
		t.Fatalf("link should be closed")
	}
}

func TestSendConfigRecord_WritesFrame(t *testing.T) {
	f := newFakeBus()
	l := connectFake(t, f)
	defer l.Disconnect()

	before := f.writeCount()
	if !l.SendConfigRecord(wire.ConfigRecord{Board: 3, Topic: 7, Index: 2, Key: 9, Value: 0x01020304}) {
		t.Fatalf("SendConfigRecord() failed")
	}

	f.mu.Lock()
	last := f.writes[len(f.writes)-1]
	f.mu.Unlock()

	if f.writeCount() != before+1 || len(last) != wire.ConfigFrameSize {
		t.Fatalf("expected one 12 byte frame, got % X", last)
	}
	if last[2] != 3 || last[9] != 0x04 {
		t.Fatalf("unexpected frame % X", last)
	}
}

func TestSend_NotConnected(t *testing.T) {
	l := New(Options{Timings: testTimings()})

	if l.SendEvent(wire.NewEvent(wire.SourceNull)) {
		t.Fatalf("SendEvent() on a closed link should fail")
	}
	if l.SendConfigRecord(wire.ConfigRecord{}) {
		t.Fatalf("SendConfigRecord() on a closed link should fail")
	}
}

func TestSendEvent_WriteTimeout(t *testing.T) {
	f := newFakeBus()
	l := connectFake(t, f)
	defer l.Disconnect()

	f.blockWrites = make(chan struct{})
	defer close(f.blockWrites)

	start := time.Now()
	if l.SendEvent(wire.Event{Source: wire.SourceSolenoid, ID: 1, Value: 1}) {
		t.Fatalf("stalled write should fail")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("write timeout not bounded: %v", elapsed)
	}
}

func TestSendEvent_TimedOutWriteStaysAhead(t *testing.T) {
	f := newFakeBus()
	l := connectFake(t, f)
	defer l.Disconnect()
	from := f.writeCount()

	release := make(chan struct{})
	f.blockWrites = release

	stalled := wire.Event{Source: wire.SourceSolenoid, ID: 1, Value: 1}
	if l.SendEvent(stalled) {
		t.Fatalf("stalled write should fail")
	}

	// the driver still holds the stalled frame
	if l.SendEvent(wire.Event{Source: wire.SourceSolenoid, ID: 2, Value: 1}) {
		t.Fatalf("write behind a stalled write should fail")
	}

	close(release)

	later := wire.Event{Source: wire.SourceSolenoid, ID: 1, Value: 0}
	if !l.SendEvent(later) {
		t.Fatalf("write after the stall cleared should succeed")
	}

	got := f.events(from)
	if len(got) != 2 || got[0] != stalled || got[1] != later {
		t.Fatalf("unexpected wire order: %+v", got)
	}
}

type recordingTap struct {
	sent     int
	received []wire.Event
}

func (r *recordingTap) Sent(frame []byte)     { r.sent++ }
func (r *recordingTap) Received(e wire.Event) { r.received = append(r.received, e) }

func TestTap_SeesTraffic(t *testing.T) {
	f := newFakeBus()
	f.script(4, burst(pong(4), terminator()))

	tap := &recordingTap{}
	l := New(Options{Open: f.opener(), Timings: testTimings(), Tap: tap})
	if ok, err := l.Connect("/dev/fake"); !ok || err != nil {
		t.Fatalf("Connect() ok=%v err=%v", ok, err)
	}
	defer l.Disconnect()

	if tap.sent != f.writeCount() {
		t.Fatalf("tap saw %d frames, port saw %d", tap.sent, f.writeCount())
	}
	if len(tap.received) != 2 || tap.received[0] != pong(4) {
		t.Fatalf("unexpected received events: %+v", tap.received)
	}
}

func TestLogger_Called(t *testing.T) {
	var lines int
	l := New(Options{Open: newFakeBus().opener(), Timings: testTimings()})
	l.SetLogger(func(format string, args ...any) { lines++ })
	l.SetDebug(true)

	if ok, err := l.Connect("/dev/fake"); !ok || err != nil {
		t.Fatalf("Connect() ok=%v err=%v", ok, err)
	}
	defer l.Disconnect()

	if lines == 0 {
		t.Fatalf("expected diagnostics with debug enabled")
	}
}
