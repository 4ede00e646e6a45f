// internal/serialport/port.go
package serialport

import (
	"fmt"
	"io"
	"time"
)

// Port is an open serial device.
//
// Read returns (0, nil) when the per-read timeout expires without data.
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and unsent output.
	Flush() error
}

// Config is the line configuration applied on open.
type Config struct {
	Device      string
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      string // "N", "E", "O"
	ReadTimeout time.Duration

	// RS485 is honored by the goburrow driver only.
	RS485 RS485Config
}

// RS485Config drives the kernel RS485 mode (RTS toggling around sends).
type RS485Config struct {
	Enabled            bool
	DelayRtsBeforeSend time.Duration
	DelayRtsAfterSend  time.Duration
	RtsHighDuringSend  bool
	RtsHighAfterSend   bool
	RxDuringTx         bool
}

// Opener opens a port with the given configuration. One attempt per call.
type Opener func(cfg Config) (Port, error)

// Driver names accepted by OpenerFor.
const (
	DriverBugst    = "bugst"
	DriverGoburrow = "goburrow"
)

// OpenerFor resolves a driver name. Empty selects the default driver.
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case "", DriverBugst:
		return openBugst, nil
	case DriverGoburrow:
		return openGoburrow, nil
	default:
		return nil, fmt.Errorf("serialport: unknown driver %q", driver)
	}
}
