// internal/config/validate_test.go
package config

import "testing"

// helper to build a minimal valid document quickly
func machine(switches ...SwitchConfig) *Config {
	return &Config{
		Platform: PlatformWPC,
		Boards: []BoardConfig{
			{Number: 0, PollEvents: true},
			{Number: 1},
		},
		Switches: switches,
	}
}

func sw(board uint8, port uint8, number uint16, desc string) SwitchConfig {
	return SwitchConfig{Board: board, Port: port, Number: number, Description: desc}
}

// ---- tests ----

func TestValidate_MinimalDocument(t *testing.T) {
	cfg := machine(sw(0, 1, 15, "start"), sw(1, 2, 16, "tilt"))

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DuplicateSwitchNumberRejected(t *testing.T) {
	cfg := machine(sw(0, 1, 15, "start"), sw(1, 2, 15, "tilt"))

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected duplicate switch error, got nil")
	}
}

func TestValidate_SameSwitchPortOnDifferentBoardsAllowed(t *testing.T) {
	cfg := machine(sw(0, 1, 15, "start"), sw(1, 1, 16, "tilt"))

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BoardOutOfRangeRejected(t *testing.T) {
	cases := map[string]*Config{
		"boards":   {Boards: []BoardConfig{{Number: 16}}},
		"switches": machine(sw(16, 0, 1, "x")),
		"pwm":      {PWMOutputs: []PWMOutputConfig{{Board: 20, Type: PWMTypeCoil}}},
		"led":      {LEDStripes: []LEDStripeConfig{{Board: 16, LEDType: "GRB"}}},
		"matrix":   {SwitchMatrix: &SwitchMatrixConfig{Board: 17}},
		"matrix2":  {SwitchMatrix2: &SwitchMatrixConfig{Board: 255}},
	}

	for name, cfg := range cases {
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: expected board range error, got nil", name)
		}
	}
}

func TestValidate_HighestBoardAllowed(t *testing.T) {
	cfg := &Config{Boards: []BoardConfig{{Number: 15, PollEvents: true}}}

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DuplicateBoardRejected(t *testing.T) {
	cfg := &Config{Boards: []BoardConfig{{Number: 3}, {Number: 3}}}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected duplicate board error, got nil")
	}
}

func TestValidate_UnknownPlatformRejected(t *testing.T) {
	cfg := machine()
	cfg.Platform = "BALLY"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected platform error, got nil")
	}
}

func TestValidate_UnknownPWMTypeRejected(t *testing.T) {
	cfg := machine()
	cfg.PWMOutputs = []PWMOutputConfig{{Board: 0, Number: 3, Type: "relay"}}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected pwm type error, got nil")
	}
}

func TestValidate_LEDTypeAndColors(t *testing.T) {
	cfg := machine()
	cfg.LEDStripes = []LEDStripeConfig{{
		Board:   0,
		LEDType: "grbw",
		Lamps:   []LEDConfig{{Number: 11, Color: "FFFFFF"}},
	}}

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.LEDStripes[0].Lamps[0].Color = "not-hex"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected color error, got nil")
	}

	cfg.LEDStripes[0].Lamps[0].Color = "FF0000"
	cfg.LEDStripes[0].LEDType = "RRGB"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected ledType error, got nil")
	}
}

func TestValidate_TriggerSourceRejected(t *testing.T) {
	cfg := machine()
	cfg.PWMOutputs = []PWMOutputConfig{{
		Board: 0,
		Type:  PWMTypeFlasher,
		Effects: []PWMEffectConfig{{
			Trigger: []TriggerConfig{{Source: "X", Number: 1}},
		}},
	}}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected trigger source error, got nil")
	}
}

func TestValidate_MirrorRequiresEndpoint(t *testing.T) {
	cfg := machine()
	cfg.Mirror = &MirrorConfig{}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected mirror endpoint error, got nil")
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := machine()
	cfg.SwitchMatrices = make([]SwitchMatrixConfig, 1, 4)
	cfg.SwitchMatrix = &SwitchMatrixConfig{Board: 2}

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.SwitchMatrices) != 1 || cfg.SwitchMatrix == nil {
		t.Fatalf("Validate mutated the document")
	}
	if cfg.SwitchMatrices[:2][1].Board != 0 {
		t.Fatalf("Validate wrote into SwitchMatrices backing array")
	}
}

func TestParseColor(t *testing.T) {
	v, err := ParseColor("FF8000")
	if err != nil || v != 0xFF8000 {
		t.Fatalf("ParseColor = %#x, %v", v, err)
	}
	if v, err := ParseColor(""); err != nil || v != 0 {
		t.Fatalf("empty color = %#x, %v", v, err)
	}
}
