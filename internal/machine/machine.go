// internal/machine/machine.go
package machine

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/ppucbus/internal/bus"
	"github.com/tamzrod/ppucbus/internal/config"
	"github.com/tamzrod/ppucbus/internal/inventory"
	"github.com/tamzrod/ppucbus/internal/translate"
	"github.com/tamzrod/ppucbus/internal/wire"
)

// Bus is the part of *bus.Link the machine drives.
type Bus interface {
	Connect(device string) (bool, error)
	Disconnect() error
	Wait()
	Flush(timeout time.Duration) bool
	SetDebug(debug bool)

	SendConfigRecord(r wire.ConfigRecord) bool
	RegisterSwitchBoard(number uint8) error
	QueueEvent(e wire.Event) bool
	Run()

	NextSwitchState() (bus.SwitchState, bool)
}

// DefaultSettle is the pause between the last configuration record and the
// first queued event.
const DefaultSettle = time.Second

// DrainTimeout bounds how long Disconnect waits for queued events.
const DrainTimeout = 250 * time.Millisecond

// GI brightness used when turning a string fully on.
const GIFull = 8

var ErrNotConfigured = errors.New("machine: no configuration loaded")

// Machine drives one pinball machine's I/O boards through a bus link.
type Machine struct {
	bus   Bus
	logf  bus.LogFunc
	sleep func(time.Duration)

	settle time.Duration

	cfg  *config.Config
	plan *translate.Plan

	serial string
	rom    string
	debug  bool
}

// New binds a machine to b. Nothing is sent until Connect.
func New(b Bus) *Machine {
	return &Machine{
		bus:    b,
		sleep:  time.Sleep,
		settle: DefaultSettle,
	}
}

// SetLogger installs the diagnostics callback. nil silences the machine.
func (m *Machine) SetLogger(fn bus.LogFunc) { m.logf = fn }

func (m *Machine) log(format string, args ...any) {
	if m.logf != nil {
		m.logf(format, args...)
	}
}

// ------------------------------------------------------------
// configuration
// ------------------------------------------------------------

// LoadConfiguration reads, validates and translates a machine document.
// serialPort, rom and debug from the document become the current settings;
// call the setters afterwards to override them.
func (m *Machine) LoadConfiguration(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	return m.Configure(cfg)
}

// Configure adopts an already decoded document.
func (m *Machine) Configure(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	config.Normalize(cfg)

	plan, err := translate.Build(cfg)
	if err != nil {
		return err
	}

	m.cfg = cfg
	m.plan = plan
	m.serial = cfg.SerialPort
	m.rom = cfg.Rom
	m.SetDebug(cfg.Debug)
	return nil
}

func (m *Machine) SetSerial(device string) { m.serial = device }
func (m *Machine) Serial() string          { return m.serial }
func (m *Machine) SetRom(rom string)       { m.rom = rom }
func (m *Machine) Rom() string             { return m.rom }

// SetDebug toggles per-frame tracing on the bus.
func (m *Machine) SetDebug(debug bool) {
	m.debug = debug
	m.bus.SetDebug(debug)
}

func (m *Machine) Debug() bool { return m.debug }

// Platform returns the normalized platform name, WPC when unconfigured.
func (m *Machine) Platform() string {
	if m.cfg == nil {
		return config.PlatformWPC
	}
	return m.cfg.Platform
}

func (m *Machine) CoinDoorClosedSwitch() uint16 {
	if m.plan == nil {
		return 0
	}
	return m.plan.CoinDoorClosedSwitch
}

func (m *Machine) GameOnSolenoid() uint16 {
	if m.plan == nil {
		return 0
	}
	return m.plan.GameOnSolenoid
}

// ------------------------------------------------------------
// lifecycle
// ------------------------------------------------------------

// Connect opens the bus, sends the whole configuration, registers the
// switch boards and starts the dispatcher.
//
// Records that fail to send are logged and skipped. The board firmware
// keeps its defaults for anything it did not receive.
func (m *Machine) Connect() (bool, error) {
	if m.plan == nil {
		return false, ErrNotConfigured
	}

	ok, err := m.bus.Connect(m.serial)
	if !ok {
		if err == nil {
			err = fmt.Errorf("machine: connect %s failed", m.serial)
		}
		return false, err
	}

	failed := 0
	for _, r := range m.plan.Records {
		if !m.bus.SendConfigRecord(r) {
			failed++
		}
	}
	if failed > 0 {
		m.log("configuration: %d of %d records not sent", failed, len(m.plan.Records))
	}

	for _, b := range m.plan.PollBoards {
		if err := m.bus.RegisterSwitchBoard(b); err != nil {
			m.log("switch board %d not registered: %v", b, err)
		}
	}

	m.sleep(m.settle)

	// WPC machines drive GI themselves.
	if m.Platform() != config.PlatformWPC {
		m.bus.QueueEvent(wire.Event{Source: wire.SourceGI, ID: 1, Value: GIFull})
	}

	// Initial switch states, coin door closed among them.
	m.bus.QueueEvent(wire.NewEvent(wire.SourceReadSwitches))

	m.bus.Run()
	return true, nil
}

// Disconnect gives queued events (StopUpdates among them) up to
// DrainTimeout to reach the wire, then closes the bus and waits for the
// dispatcher to finish.
func (m *Machine) Disconnect() error {
	if !m.bus.Flush(DrainTimeout) {
		m.log("disconnect: outbound queue not drained")
	}
	err := m.bus.Disconnect()
	m.bus.Wait()
	return err
}

// ------------------------------------------------------------
// outputs
// ------------------------------------------------------------

// SetSolenoidState queues a solenoid change. Any nonzero state means on.
func (m *Machine) SetSolenoidState(number, state int) bool {
	return m.bus.QueueEvent(wire.Event{Source: wire.SourceSolenoid, ID: uint16(number), Value: onOff(state)})
}

// SetLampState queues a lamp change. Any nonzero state means on.
func (m *Machine) SetLampState(number, state int) bool {
	return m.bus.QueueEvent(wire.Event{Source: wire.SourceLight, ID: uint16(number), Value: onOff(state)})
}

// SetGIState queues a GI string brightness, 0 (off) to GIFull.
func (m *Machine) SetGIState(str, brightness int) bool {
	if brightness < 0 {
		brightness = 0
	}
	if brightness > GIFull {
		brightness = GIFull
	}
	return m.bus.QueueEvent(wire.Event{Source: wire.SourceGI, ID: uint16(str), Value: byte(brightness)})
}

// StartUpdates tells the boards the game is running.
func (m *Machine) StartUpdates() bool {
	return m.bus.QueueEvent(wire.Event{Source: wire.SourceRun, ID: 1, Value: 1})
}

// StopUpdates tells the boards the game stopped.
func (m *Machine) StopUpdates() bool {
	return m.bus.QueueEvent(wire.Event{Source: wire.SourceRun, ID: 1, Value: 0})
}

func onOff(state int) byte {
	if state == 0 {
		return 0
	}
	return 1
}

// ------------------------------------------------------------
// inputs / inventory
// ------------------------------------------------------------

// NextSwitchState pops the oldest switch transition without blocking.
func (m *Machine) NextSwitchState() (bus.SwitchState, bool) {
	return m.bus.NextSwitchState()
}

func (m *Machine) Coils() []inventory.Coil {
	if m.plan == nil {
		return nil
	}
	return m.plan.Inventory.Coils()
}

func (m *Machine) Lamps() []inventory.Lamp {
	if m.plan == nil {
		return nil
	}
	return m.plan.Inventory.Lamps()
}

func (m *Machine) Switches() []inventory.Switch {
	if m.plan == nil {
		return nil
	}
	return m.plan.Inventory.Switches()
}

// Switch looks up a declared switch by number.
func (m *Machine) Switch(number int) (inventory.Switch, bool) {
	if m.plan == nil {
		return inventory.Switch{}, false
	}
	return m.plan.Inventory.Switch(number)
}

var _ Bus = (*bus.Link)(nil)
