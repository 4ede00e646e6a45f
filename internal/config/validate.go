// internal/config/validate.go
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxBoards is the bus address space. Board numbers are 0..MaxBoards-1.
const MaxBoards = 16

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil document")
	}

	// ------------------------------------------------------------
	// MACHINE
	// ------------------------------------------------------------

	switch cfg.Platform {
	case "", PlatformWPC, PlatformDataEast, PlatformSys4, PlatformSys11:
	default:
		return fmt.Errorf("config: unknown platform %q", cfg.Platform)
	}

	switch cfg.Bus.Driver {
	case "", "bugst", "goburrow":
	default:
		return fmt.Errorf("config: unknown bus driver %q", cfg.Bus.Driver)
	}

	if cfg.Bus.RS485.DelayRtsBeforeSendUs < 0 || cfg.Bus.RS485.DelayRtsAfterSendUs < 0 {
		return fmt.Errorf("config: rs485 delays must not be negative")
	}

	if m := cfg.Mirror; m != nil {
		if m.Endpoint == "" {
			return fmt.Errorf("config: mirror endpoint is required")
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("config: mirror timeoutMs must not be negative")
		}
	}

	// ------------------------------------------------------------
	// BOARDS
	// ------------------------------------------------------------

	seenBoard := make(map[uint8]bool)
	for _, b := range cfg.Boards {
		if err := checkBoard("boards", b.Number); err != nil {
			return err
		}
		if seenBoard[b.Number] {
			return fmt.Errorf("config: board %d declared twice", b.Number)
		}
		seenBoard[b.Number] = true
	}

	// ------------------------------------------------------------
	// SWITCHES
	// ------------------------------------------------------------

	// key = switch number
	switchOwner := make(map[uint16]string)

	for _, s := range cfg.Switches {
		if err := checkBoard("switches", s.Board); err != nil {
			return err
		}
		if prev, exists := switchOwner[s.Number]; exists {
			return fmt.Errorf(
				"config: switch number %d used by %q and %q",
				s.Number,
				prev,
				s.Description,
			)
		}
		switchOwner[s.Number] = s.Description
	}

	matrices := append([]SwitchMatrixConfig(nil), cfg.SwitchMatrices...)
	if cfg.SwitchMatrix != nil {
		matrices = append(matrices, *cfg.SwitchMatrix)
	}
	if cfg.SwitchMatrix2 != nil {
		matrices = append(matrices, *cfg.SwitchMatrix2)
	}
	for _, m := range matrices {
		if err := checkBoard("switchMatrix", m.Board); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// PWM OUTPUTS
	// ------------------------------------------------------------

	for _, p := range cfg.PWMOutputs {
		if err := checkBoard("pwmOutput", p.Board); err != nil {
			return err
		}
		switch p.Type {
		case "", PWMTypeCoil, PWMTypeFlasher, PWMTypeLamp, PWMTypeMotor:
		default:
			return fmt.Errorf("config: pwm output %d: unknown type %q", p.Number, p.Type)
		}
		for _, e := range p.Effects {
			if e.Repeat < -1 {
				return fmt.Errorf("config: pwm output %d: repeat must be -1 or greater", p.Number)
			}
			if err := checkTriggers(e.Trigger); err != nil {
				return fmt.Errorf("config: pwm output %d: %w", p.Number, err)
			}
		}
	}

	// ------------------------------------------------------------
	// LED STRIPES
	// ------------------------------------------------------------

	for _, l := range cfg.LEDStripes {
		if err := checkBoard("ledStripes", l.Board); err != nil {
			return err
		}
		if !ValidColorOrder(strings.ToUpper(l.LEDType)) {
			return fmt.Errorf("config: led stripe on board %d port %d: unknown ledType %q", l.Board, l.Port, l.LEDType)
		}
		for _, e := range l.Effects {
			if _, err := ParseColor(e.Color); err != nil {
				return fmt.Errorf("config: led effect on segment %d: %w", e.Segment, err)
			}
			if e.Repeat < -1 {
				return fmt.Errorf("config: led effect on segment %d: repeat must be -1 or greater", e.Segment)
			}
			if err := checkTriggers(e.Trigger); err != nil {
				return fmt.Errorf("config: led effect on segment %d: %w", e.Segment, err)
			}
		}
		for _, group := range [][]LEDConfig{l.Lamps, l.Flashers, l.GI} {
			for _, led := range group {
				if _, err := ParseColor(led.Color); err != nil {
					return fmt.Errorf("config: led %d: %w", led.Number, err)
				}
			}
		}
	}

	return nil
}

func checkBoard(section string, n uint8) error {
	if n >= MaxBoards {
		return fmt.Errorf("config: %s: board %d out of range (0..%d)", section, n, MaxBoards-1)
	}
	return nil
}

func checkTriggers(ts []TriggerConfig) error {
	for _, t := range ts {
		switch t.Source {
		case "", TriggerSwitch, TriggerSolenoid, TriggerLight:
		default:
			return fmt.Errorf("unknown trigger source %q", t.Source)
		}
	}
	return nil
}

// ValidColorOrder reports whether s is a NeoPixel channel order such as
// "GRB" or "WRGB": each of R, G and B once, plus at most one W.
func ValidColorOrder(s string) bool {
	if len(s) != 3 && len(s) != 4 {
		return false
	}
	var seen [256]bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != 'R' && c != 'G' && c != 'B' && c != 'W' {
			return false
		}
		if seen[c] {
			return false
		}
		seen[c] = true
	}
	return seen['R'] && seen['G'] && seen['B']
}

// ParseColor parses a hex color such as "FF8000". Empty means black.
func ParseColor(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return uint32(v), nil
}
