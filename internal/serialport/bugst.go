// internal/serialport/bugst.go
package serialport

import (
	"fmt"

	"go.bug.st/serial"
)

// bugstPort adapts go.bug.st/serial. Its Read already returns (0, nil) on
// timeout.
type bugstPort struct {
	serial.Port
}

func openBugst(cfg Config) (Port, error) {
	parity, err := bugstParity(cfg.Parity)
	if err != nil {
		return nil, err
	}

	stop := serial.OneStopBit
	if cfg.StopBits == 2 {
		stop = serial.TwoStopBits
	}

	p, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   parity,
		StopBits: stop,
	})
	if err != nil {
		return nil, err
	}

	if cfg.ReadTimeout > 0 {
		if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("serialport: set read timeout: %w", err)
		}
	}

	return &bugstPort{Port: p}, nil
}

func (p *bugstPort) Flush() error {
	if err := p.ResetInputBuffer(); err != nil {
		return err
	}
	return p.ResetOutputBuffer()
}

func bugstParity(s string) (serial.Parity, error) {
	switch s {
	case "", "N":
		return serial.NoParity, nil
	case "E":
		return serial.EvenParity, nil
	case "O":
		return serial.OddParity, nil
	default:
		return serial.NoParity, fmt.Errorf("serialport: unsupported parity %q", s)
	}
}

// List returns the serial devices present on this host.
func List() ([]string, error) {
	return serial.GetPortsList()
}
