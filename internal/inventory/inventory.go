// internal/inventory/inventory.go
package inventory

import "sort"

// CoilType is the PWM output kind. Values are the board firmware's.
type CoilType uint8

const (
	CoilSolenoid CoilType = 1
	CoilFlasher  CoilType = 2
	CoilLamp     CoilType = 3
	CoilMotor    CoilType = 4
)

// LampType is the role of an addressable LED. Values are the board firmware's.
type LampType uint8

const (
	LampLED     LampType = 1
	LampFlasher LampType = 2
	LampGI      LampType = 3
)

type Switch struct {
	Board       uint8
	Port        uint8
	Number      uint16
	Description string
}

type Coil struct {
	Board       uint8
	Port        uint8
	Type        CoilType
	Number      uint16
	Description string
}

type Lamp struct {
	Board       uint8
	Port        uint8
	Type        LampType
	Number      uint16
	Description string
	Color       uint32
}

// Inventory records the outputs and switches a machine document declares.
// It is filled once while translating and read afterwards.
type Inventory struct {
	coils    []Coil
	lamps    []Lamp
	switches []Switch
}

func (inv *Inventory) AddCoil(c Coil)     { inv.coils = append(inv.coils, c) }
func (inv *Inventory) AddLamp(l Lamp)     { inv.lamps = append(inv.lamps, l) }
func (inv *Inventory) AddSwitch(s Switch) { inv.switches = append(inv.switches, s) }

// Coils returns a copy sorted by number. Equal numbers keep declaration order.
func (inv *Inventory) Coils() []Coil {
	out := append([]Coil(nil), inv.coils...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Lamps returns a copy sorted by number.
func (inv *Inventory) Lamps() []Lamp {
	out := append([]Lamp(nil), inv.lamps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Switches returns a copy sorted by number.
func (inv *Inventory) Switches() []Switch {
	out := append([]Switch(nil), inv.switches...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Switch looks up a declared switch by number.
func (inv *Inventory) Switch(number int) (Switch, bool) {
	for _, s := range inv.switches {
		if int(s.Number) == number {
			return s, true
		}
	}
	return Switch{}, false
}
