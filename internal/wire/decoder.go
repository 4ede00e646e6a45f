// internal/wire/decoder.go
package wire

import "fmt"

// FrameError reports why an in-progress event frame was dropped.
type FrameError struct {
	Field string
	Got   uint16
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("wire: illegal %s %d", e.Field, e.Got)
}

type decoderState uint8

const (
	waitStart decoderState = iota
	inFrame
	resync
)

// Decoder is a push-based event frame decoder.
//
// Bytes seen while waiting for a start byte are skipped. A validation
// failure drops the frame and enters resync: the stream is scanned for the
// AA 55 trailer, starting right after the dropped frame's start byte, and
// normal decoding resumes behind it.
//
// The zero value is ready to use. Not safe for concurrent use.
type Decoder struct {
	st    decoderState
	buf   [EventFrameSize]byte
	n     int
	sawHi bool
}

// Reset discards any partial frame and resync progress.
func (d *Decoder) Reset() {
	*d = Decoder{}
}

// InSync reports whether the decoder is outside a resync scan.
func (d *Decoder) InSync() bool {
	return d.st != resync
}

// Feed pushes one byte. It returns the event when b completes a valid
// frame. A non-nil error means a frame was dropped on this byte.
func (d *Decoder) Feed(b byte) (Event, bool, error) {
	switch d.st {
	case waitStart:
		if b == StartByte {
			d.buf[0] = b
			d.n = 1
			d.st = inFrame
		}
		return Event{}, false, nil

	case resync:
		d.scan(b)
		return Event{}, false, nil
	}

	d.buf[d.n] = b
	d.n++

	if err := d.check(); err != nil {
		d.abort()
		return Event{}, false, err
	}
	if d.n < EventFrameSize {
		return Event{}, false, nil
	}

	ev := Event{
		Source: d.buf[1],
		ID:     uint16(d.buf[2])<<8 | uint16(d.buf[3]),
		Value:  d.buf[4],
	}
	d.st = waitStart
	d.n = 0
	return ev, true, nil
}

// check validates the byte just appended, in wire order.
func (d *Decoder) check() error {
	switch d.n - 1 {
	case 1:
		if d.buf[1] == SourceIllegal {
			return &FrameError{Field: "source id", Got: uint16(d.buf[1])}
		}
	case 3:
		if id := uint16(d.buf[2])<<8 | uint16(d.buf[3]); id == 0 {
			return &FrameError{Field: "event id", Got: id}
		}
	case 5:
		if d.buf[5] != TrailerHi {
			return &FrameError{Field: "first stop byte", Got: uint16(d.buf[5])}
		}
	case 6:
		if d.buf[6] != TrailerLo {
			return &FrameError{Field: "second stop byte", Got: uint16(d.buf[6])}
		}
	}
	return nil
}

// abort enters resync and rescans the dropped frame's bytes after its start
// byte, so a trailer swallowed by the dropped frame is not lost.
func (d *Decoder) abort() {
	var replay [EventFrameSize - 1]byte
	n := copy(replay[:], d.buf[1:d.n])

	d.st = resync
	d.n = 0
	d.sawHi = false

	for _, c := range replay[:n] {
		// A replay holds at most 6 bytes and can never complete a frame;
		// a second failure inside it starts its own, shorter, replay.
		_, _, _ = d.Feed(c)
	}
}

func (d *Decoder) scan(b byte) {
	if d.sawHi && b == TrailerLo {
		d.st = waitStart
		d.sawHi = false
		return
	}
	d.sawHi = b == TrailerHi
}
