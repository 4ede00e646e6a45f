// internal/mirror/mirror.go
package mirror

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/ppucbus/internal/bus"
	"github.com/tamzrod/ppucbus/internal/config"
	mmodbus "github.com/tamzrod/ppucbus/internal/mirror/modbus"
	"github.com/tamzrod/ppucbus/internal/status"
)

// endpointClient is the exact contract the mirror uses.
type endpointClient interface {
	WriteCoil(addr uint16, on bool) error
	WriteRegisters(addr uint16, regs []uint16) error
}

// Plan places the mirrored data inside the endpoint's address space.
type Plan struct {
	SwitchOffset uint16 // coil address of switch 0
	StatusOffset uint16 // first holding register of the status block
	Name         string // written into the status block name slots
}

// Mirror publishes switch transitions as coils and the board status block
// as holding registers. It is used from one goroutine.
type Mirror struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     []uint16 // live slots as last written
}

func newMirror(plan Plan, cli endpointClient) *Mirror {
	return &Mirror{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
	}
}

// Dial connects to the endpoint named by cfg. cfg must be normalized.
func Dial(cfg *config.MirrorConfig, name string) (*Mirror, func() error, error) {
	if cfg == nil {
		return nil, nil, errors.New("mirror: not configured")
	}

	c, err := mmodbus.Dial(mmodbus.Config{
		Endpoint: cfg.Endpoint,
		UnitID:   cfg.UnitID,
		Timeout:  time.Duration(cfg.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	m := newMirror(Plan{
		SwitchOffset: cfg.SwitchOffset,
		StatusOffset: cfg.StatusOffset,
		Name:         name,
	}, c)
	return m, c.Close, nil
}

// Switch writes coil SwitchOffset+number.
func (m *Mirror) Switch(s bus.SwitchState) error {
	addr := int(m.plan.SwitchOffset) + s.Number
	if s.Number < 0 || addr > 0xFFFF {
		return fmt.Errorf("mirror: switch %d outside coil space (offset=%d)", s.Number, m.plan.SwitchOffset)
	}

	if err := m.cli.WriteCoil(uint16(addr), s.State != 0); err != nil {
		return fmt.Errorf("mirror: switch %d write failed: %w", s.Number, err)
	}
	return nil
}

// WriteStatus delivers a status snapshot.
// The first call, and the first call after any failure, writes the whole
// block including the name. Otherwise only the changed span of live slots
// is written.
func (m *Mirror) WriteStatus(s status.Snapshot) error {
	if s.SecondsInError > 65535 {
		s.SecondsInError = 65535
	}

	live := status.Encode(s)

	if m.needFull {
		regs := status.EncodeBlock(s, m.plan.Name)
		if err := m.cli.WriteRegisters(m.plan.StatusOffset, regs); err != nil {
			return fmt.Errorf("mirror: full status write failed: %w", err)
		}
		m.needFull = false
		m.last = live
		return nil
	}

	first, end := changedSpan(m.last, live)
	if first == end {
		return nil
	}

	if err := m.cli.WriteRegisters(m.plan.StatusOffset+uint16(first), live[first:end]); err != nil {
		// Any partial failure introduces doubt: re-assert on next success.
		m.needFull = true
		return fmt.Errorf("mirror: status slots %d-%d write failed: %w", first, end-1, err)
	}
	m.last = live
	return nil
}

// changedSpan returns the half-open range of slots that differ.
func changedSpan(prev, cur []uint16) (int, int) {
	first, end := -1, 0
	for i := range cur {
		if i < len(prev) && prev[i] == cur[i] {
			continue
		}
		if first < 0 {
			first = i
		}
		end = i + 1
	}
	if first < 0 {
		return 0, 0
	}
	return first, end
}
