// internal/serialport/goburrow.go
package serialport

import (
	"errors"

	"github.com/goburrow/serial"
)

// flushReads bounds the input drain on Flush.
const flushReads = 64

// goburrowPort adapts github.com/goburrow/serial. The driver restores the
// previous terminal settings on Close.
type goburrowPort struct {
	serial.Port
}

func openGoburrow(cfg Config) (Port, error) {
	// A zero timeout makes reads block forever.
	if cfg.ReadTimeout <= 0 {
		return nil, errors.New("serialport: goburrow driver requires a read timeout")
	}

	parity := cfg.Parity
	if parity == "" {
		parity = "N"
	}

	p, err := serial.Open(&serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   parity,
		Timeout:  cfg.ReadTimeout,
		RS485: serial.RS485Config{
			Enabled:            cfg.RS485.Enabled,
			DelayRtsBeforeSend: cfg.RS485.DelayRtsBeforeSend,
			DelayRtsAfterSend:  cfg.RS485.DelayRtsAfterSend,
			RtsHighDuringSend:  cfg.RS485.RtsHighDuringSend,
			RtsHighAfterSend:   cfg.RS485.RtsHighAfterSend,
			RxDuringTx:         cfg.RS485.RxDuringTx,
		},
	})
	if err != nil {
		return nil, err
	}
	return &goburrowPort{Port: p}, nil
}

func (p *goburrowPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if errors.Is(err, serial.ErrTimeout) {
		return n, nil
	}
	return n, err
}

// Flush drains pending input. The driver exposes no buffer reset, and
// output is written synchronously, so only input needs discarding.
func (p *goburrowPort) Flush() error {
	var buf [256]byte
	for i := 0; i < flushReads; i++ {
		n, err := p.Read(buf[:])
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}
