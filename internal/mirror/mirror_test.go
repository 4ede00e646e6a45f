// internal/mirror/mirror_test.go
package mirror

import (
	"errors"
	"testing"

	"github.com/tamzrod/ppucbus/internal/bus"
	"github.com/tamzrod/ppucbus/internal/status"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	coils []coilCall

	lastRegsAddr uint16
	lastRegs     []uint16
	regWrites    int

	fail error
}

type coilCall struct {
	addr uint16
	on   bool
}

func (f *fakeEndpointClient) WriteCoil(addr uint16, on bool) error {
	if f.fail != nil {
		return f.fail
	}
	f.coils = append(f.coils, coilCall{addr: addr, on: on})
	return nil
}

func (f *fakeEndpointClient) WriteRegisters(addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	f.regWrites++
	f.lastRegsAddr = addr
	f.lastRegs = append([]uint16(nil), regs...)
	return nil
}

// ---- tests ----

func TestSwitch_WritesOffsetCoil(t *testing.T) {
	cli := &fakeEndpointClient{}
	m := newMirror(Plan{SwitchOffset: 100}, cli)

	for _, s := range []bus.SwitchState{{Number: 15, State: 1}, {Number: 15, State: 0}, {Number: 0, State: 1}} {
		if err := m.Switch(s); err != nil {
			t.Fatalf("Switch(%+v) err=%v", s, err)
		}
	}

	want := []coilCall{{115, true}, {115, false}, {100, true}}
	if len(cli.coils) != len(want) {
		t.Fatalf("coil writes = %+v", cli.coils)
	}
	for i := range want {
		if cli.coils[i] != want[i] {
			t.Fatalf("write %d: got %+v want %+v", i, cli.coils[i], want[i])
		}
	}
}

func TestSwitch_OutsideCoilSpace(t *testing.T) {
	m := newMirror(Plan{SwitchOffset: 0xFFFF}, &fakeEndpointClient{})

	if err := m.Switch(bus.SwitchState{Number: 1, State: 1}); err == nil {
		t.Fatalf("expected range error")
	}
	if err := m.Switch(bus.SwitchState{Number: -1}); err == nil {
		t.Fatalf("expected range error for negative number")
	}
}

func TestWriteStatus_NameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	m := newMirror(Plan{StatusOffset: 200, Name: "t2_l8"}, cli)

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{Health: status.HealthOK, Active: []uint8{0, 2}, Poll: []uint8{0, 2}}
	if err := m.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerBlock || cli.lastRegsAddr != 200 {
		t.Fatalf("expected full block at 200, got %d regs at %d", len(cli.lastRegs), cli.lastRegsAddr)
	}

	expectedName := status.EncodeName("t2_l8")
	for i := 0; i < status.SlotNameSlots; i++ {
		slot := status.SlotNameStart + i
		if cli.lastRegs[slot] != expectedName[i] {
			t.Fatalf("name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], expectedName[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := first
	second.Health = status.HealthError
	second.LastErrorCode = status.ErrBoardMissing
	second.SecondsInError = 1

	if err := m.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}
	if cli.lastRegsAddr != 200 || len(cli.lastRegs) != 3 {
		t.Fatalf("expected slots 0-2 at 200, got %d regs at %d", len(cli.lastRegs), cli.lastRegsAddr)
	}
}

func TestWriteStatus_UnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	m := newMirror(Plan{}, cli)

	s := status.Snapshot{Health: status.HealthOK}
	_ = m.WriteStatus(s)
	_ = m.WriteStatus(s)

	if cli.regWrites != 1 {
		t.Fatalf("expected 1 register write, got %d", cli.regWrites)
	}
}

func TestWriteStatus_SecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	m := newMirror(Plan{StatusOffset: 0}, cli)

	errSnap := status.Snapshot{Health: status.HealthError, LastErrorCode: status.ErrBoardMissing, SecondsInError: 3}
	if err := m.WriteStatus(errSnap); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}

	okSnap := status.Snapshot{Health: status.HealthOK}
	if err := m.WriteStatus(okSnap); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	if cli.lastRegsAddr != status.SlotHealthCode || len(cli.lastRegs) != 3 {
		t.Fatalf("unexpected write: addr=%d regs=%v", cli.lastRegsAddr, cli.lastRegs)
	}
	if cli.lastRegs[status.SlotSecondsInError] != 0 {
		t.Fatalf("seconds_in_error not reset: got=%d", cli.lastRegs[status.SlotSecondsInError])
	}
}

func TestWriteStatus_FailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	m := newMirror(Plan{Name: "afm"}, cli)

	_ = m.WriteStatus(status.Snapshot{Health: status.HealthOK})

	cli.fail = errors.New("broken pipe")
	if err := m.WriteStatus(status.Snapshot{Health: status.HealthDisconnected}); err == nil {
		t.Fatalf("expected write error")
	}

	cli.fail = nil
	if err := m.WriteStatus(status.Snapshot{Health: status.HealthDisconnected}); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerBlock {
		t.Fatalf("expected full re-assert, got %d regs", len(cli.lastRegs))
	}
}

func TestChangedSpan(t *testing.T) {
	prev := []uint16{1, 2, 3, 4, 5}
	cur := []uint16{1, 9, 3, 9, 5}

	if first, end := changedSpan(prev, cur); first != 1 || end != 4 {
		t.Fatalf("changedSpan = %d,%d", first, end)
	}
	if first, end := changedSpan(prev, prev); first != end {
		t.Fatalf("identical slices produced span %d,%d", first, end)
	}
}
