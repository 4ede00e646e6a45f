// internal/hwtest/hwtest.go
package hwtest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tamzrod/ppucbus/internal/bus"
	"github.com/tamzrod/ppucbus/internal/config"
	"github.com/tamzrod/ppucbus/internal/inventory"
	"github.com/tamzrod/ppucbus/internal/machine"
)

// Machine is what the test routines need from machine.Machine.
type Machine interface {
	SetSolenoidState(number, state int) bool
	SetLampState(number, state int) bool
	SetGIState(str, brightness int) bool
	NextSwitchState() (bus.SwitchState, bool)

	Coils() []inventory.Coil
	Lamps() []inventory.Lamp
	Switch(number int) (inventory.Switch, bool)
	Platform() string
}

// ---- TIMING ----

const (
	PulseOn    = 200 * time.Millisecond
	PulseOff   = time.Second
	LampOn     = 2 * time.Second
	LampHold   = 10 * time.Second
	GIOn       = 5 * time.Second
	SwitchPoll = 200 * time.Millisecond

	FlasherPulses = 3
	GIStrings     = 8
)

// Tester runs interactive hardware checks and prints what it drives.
// A number of 0 selects every matching output.
type Tester struct {
	m   Machine
	out io.Writer

	wait func(ctx context.Context, d time.Duration) error
}

func New(m Machine, out io.Writer) *Tester {
	return &Tester{m: m, out: out, wait: wait}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (t *Tester) header(title string) {
	fmt.Fprintf(t.out, "\n%s\n=========\n", title)
}

func (t *Tester) printCoil(c inventory.Coil) {
	fmt.Fprintf(t.out, "\nBoard: %d\nPort: %d\nNumber: %d\nDescription: %s\n",
		c.Board, c.Port, c.Number, c.Description)
}

func (t *Tester) printLamp(l inventory.Lamp) {
	fmt.Fprintf(t.out, "\nBoard: %d\nPort: %d\nNumber: %d\nDescription: %s\nColor: %08X\n",
		l.Board, l.Port, l.Number, l.Description, l.Color)
}

// pulse fires a solenoid once: on, PulseOn, off, PulseOff.
func (t *Tester) pulse(ctx context.Context, number int) error {
	t.m.SetSolenoidState(number, 1)
	if err := t.wait(ctx, PulseOn); err != nil {
		t.m.SetSolenoidState(number, 0)
		return err
	}
	t.m.SetSolenoidState(number, 0)
	return t.wait(ctx, PulseOff)
}

// ------------------------------------------------------------
// routines
// ------------------------------------------------------------

// Coils pulses every solenoid and PWM flasher once.
func (t *Tester) Coils(ctx context.Context, number int) error {
	t.header("Coil Test")

	for _, c := range t.m.Coils() {
		if c.Type != inventory.CoilSolenoid && c.Type != inventory.CoilFlasher {
			continue
		}
		if number != 0 && int(c.Number) != number {
			continue
		}
		t.printCoil(c)
		if err := t.pulse(ctx, int(c.Number)); err != nil {
			return err
		}
	}
	return nil
}

// Lamps walks every LED lamp and PWM lamp. With a number it lights the
// matching lamps together for LampHold instead.
func (t *Tester) Lamps(ctx context.Context, number int) error {
	t.header("Lamp Test")

	if number != 0 {
		return t.holdLamp(ctx, number)
	}

	for _, l := range t.m.Lamps() {
		if l.Type != inventory.LampLED {
			continue
		}
		t.printLamp(l)
		if err := t.blink(ctx, int(l.Number), t.m.SetLampState); err != nil {
			return err
		}
	}

	for _, c := range t.m.Coils() {
		if c.Type != inventory.CoilLamp {
			continue
		}
		t.printCoil(c)
		if err := t.blink(ctx, int(c.Number), t.m.SetSolenoidState); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tester) blink(ctx context.Context, number int, set func(number, state int) bool) error {
	set(number, 1)
	err := t.wait(ctx, LampOn)
	set(number, 0)
	if err != nil {
		return err
	}
	return t.wait(ctx, PulseOff)
}

func (t *Tester) holdLamp(ctx context.Context, number int) error {
	var lamps, coils []int

	for _, l := range t.m.Lamps() {
		if l.Type == inventory.LampLED && int(l.Number) == number {
			t.printLamp(l)
			t.m.SetLampState(number, 1)
			lamps = append(lamps, number)
		}
	}
	for _, c := range t.m.Coils() {
		if c.Type == inventory.CoilLamp && int(c.Number) == number {
			t.printCoil(c)
			t.m.SetSolenoidState(number, 1)
			coils = append(coils, number)
		}
	}

	err := t.wait(ctx, LampHold)

	for _, n := range lamps {
		t.m.SetLampState(n, 0)
	}
	for _, n := range coils {
		t.m.SetSolenoidState(n, 0)
	}
	return err
}

// Flashers pulses every LED flasher, then every PWM flasher, FlasherPulses
// times each. LED flashers are driven by solenoid number like the ROM does.
func (t *Tester) Flashers(ctx context.Context, number int) error {
	t.header("Flasher Test")

	for _, l := range t.m.Lamps() {
		if l.Type != inventory.LampFlasher {
			continue
		}
		if number != 0 && int(l.Number) != number {
			continue
		}
		t.printLamp(l)
		for i := 0; i < FlasherPulses; i++ {
			if err := t.pulse(ctx, int(l.Number)); err != nil {
				return err
			}
		}
	}

	for _, c := range t.m.Coils() {
		if c.Type != inventory.CoilFlasher {
			continue
		}
		if number != 0 && int(c.Number) != number {
			continue
		}
		t.printCoil(c)
		for i := 0; i < FlasherPulses; i++ {
			if err := t.pulse(ctx, int(c.Number)); err != nil {
				return err
			}
		}
	}
	return nil
}

// GI turns each GI string fully on for GIOn. Only WPC machines have more
// than one string.
func (t *Tester) GI(ctx context.Context, number int) error {
	t.header("GI Test")

	for i := 1; i <= GIStrings; i++ {
		if t.m.Platform() != config.PlatformWPC && i > 1 {
			break
		}
		if number != 0 && number != i {
			continue
		}

		fmt.Fprintf(t.out, "Setting GI String %d to brightness %d\n", i, machine.GIFull)
		t.m.SetGIState(i, machine.GIFull)
		err := t.wait(ctx, GIOn)
		t.m.SetGIState(i, 0)
		if err != nil {
			return err
		}
		if err := t.wait(ctx, PulseOff); err != nil {
			return err
		}
	}
	return nil
}

// Switches prints every switch transition until ctx is done.
func (t *Tester) Switches(ctx context.Context) error {
	t.header("Switch Test")

	for {
		for {
			s, ok := t.m.NextSwitchState()
			if !ok {
				break
			}
			if sw, known := t.m.Switch(s.Number); known {
				fmt.Fprintf(t.out, "Switch updated: #%d, %d\nDescription: %s\n", s.Number, s.State, sw.Description)
			} else {
				fmt.Fprintf(t.out, "Switch updated: #%d, %d\n", s.Number, s.State)
			}
		}

		if err := t.wait(ctx, SwitchPoll); err != nil {
			return err
		}
	}
}

// Run dispatches a test by name: coil, lamp, flasher, gi or switch.
func (t *Tester) Run(ctx context.Context, name string, number int) error {
	switch name {
	case "coil":
		return t.Coils(ctx, number)
	case "lamp":
		return t.Lamps(ctx, number)
	case "flasher":
		return t.Flashers(ctx, number)
	case "gi":
		return t.GI(ctx, number)
	case "switch":
		return t.Switches(ctx)
	}
	return fmt.Errorf("hwtest: unknown test %q", name)
}
