// internal/config/normalize.go
package config

import "strings"

// DefaultMirrorTimeoutMs applies when mirror.timeoutMs is zero.
const DefaultMirrorTimeoutMs = 1000

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Platform == "" {
		cfg.Platform = PlatformWPC
	}
	if cfg.Bus.Driver == "" {
		cfg.Bus.Driver = "bugst"
	}

	// ------------------------------------------------------------
	// SWITCH MATRICES
	// ------------------------------------------------------------

	// Legacy keys come first, in document order, ahead of switchMatrices.
	var legacy []SwitchMatrixConfig
	if cfg.SwitchMatrix != nil {
		legacy = append(legacy, *cfg.SwitchMatrix)
	}
	if cfg.SwitchMatrix2 != nil {
		legacy = append(legacy, *cfg.SwitchMatrix2)
	}
	if len(legacy) > 0 {
		cfg.SwitchMatrices = append(legacy, cfg.SwitchMatrices...)
	}
	cfg.SwitchMatrix = nil
	cfg.SwitchMatrix2 = nil

	// ------------------------------------------------------------
	// PWM OUTPUTS / LED STRIPES
	// ------------------------------------------------------------

	for i := range cfg.PWMOutputs {
		p := &cfg.PWMOutputs[i]
		if p.Type == "" {
			p.Type = PWMTypeCoil
		}
		for j := range p.Effects {
			normalizeTriggers(p.Effects[j].Trigger)
		}
	}

	for i := range cfg.LEDStripes {
		l := &cfg.LEDStripes[i]
		l.LEDType = strings.ToUpper(l.LEDType)
		for j := range l.Effects {
			normalizeTriggers(l.Effects[j].Trigger)
		}
	}

	// ------------------------------------------------------------
	// MIRROR
	// ------------------------------------------------------------

	if m := cfg.Mirror; m != nil {
		if m.TimeoutMs == 0 {
			m.TimeoutMs = DefaultMirrorTimeoutMs
		}
		if m.UnitID == 0 {
			m.UnitID = 1
		}
	}
}

func normalizeTriggers(ts []TriggerConfig) {
	for i := range ts {
		if ts[i].Source == "" {
			ts[i].Source = TriggerSwitch
		}
	}
}
