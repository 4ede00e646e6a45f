// internal/bus/types.go
package bus

import (
	"errors"
	"fmt"
)

// MaxBoards is the hard bus-size cap. Board ids are 0..MaxBoards-1.
const MaxBoards = 16

// MaxEventsPerCycle bounds how many queued events one dispatcher cycle sends
// before polling the next board.
const MaxEventsPerCycle = 32

// BoardID is a bus address.
type BoardID uint8

// Valid reports whether b fits the bus.
func (b BoardID) Valid() bool { return b < MaxBoards }

// SwitchState is an observed switch transition.
type SwitchState struct {
	Number int
	State  int // 0 or 1
}

// LogFunc receives printf-style diagnostics. It is called from both the
// caller goroutine and the dispatcher goroutine.
type LogFunc func(format string, args ...any)

// ConnectionError reports a failed open or configure of the serial device.
type ConnectionError struct {
	Device string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("bus: connect %s: %v", e.Device, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

var (
	ErrNotConnected     = errors.New("bus: not connected")
	ErrAlreadyConnected = errors.New("bus: already connected")
	ErrWriteTimeout     = errors.New("bus: write timeout")

	errNoOpener = errors.New("no serial opener configured")

	// errReceiveTimeout ends a burst; it never reaches callers.
	errReceiveTimeout = errors.New("bus: receive timeout")
)
