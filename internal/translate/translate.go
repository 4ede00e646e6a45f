// internal/translate/translate.go
package translate

import (
	"fmt"

	"github.com/tamzrod/ppucbus/internal/config"
	"github.com/tamzrod/ppucbus/internal/inventory"
	"github.com/tamzrod/ppucbus/internal/wire"
)

// Plan is everything a validated, normalized machine document turns into.
type Plan struct {
	// Records in send order. Each (board, topic) block starts at index 0
	// and ascends without gaps.
	Records []wire.ConfigRecord

	// PollBoards lists boards with pollEvents set, in document order.
	PollBoards []uint8

	Platform             uint32
	CoinDoorClosedSwitch uint16
	GameOnSolenoid       uint16

	Inventory *inventory.Inventory
}

// Build translates cfg into configuration records and an inventory.
// cfg must have passed config.Validate and config.Normalize.
func Build(cfg *config.Config) (*Plan, error) {
	if cfg == nil {
		return nil, fmt.Errorf("translate: nil document")
	}

	platform, err := platformCode(cfg.Platform)
	if err != nil {
		return nil, err
	}

	b := &builder{
		plan: &Plan{
			Platform:             platform,
			CoinDoorClosedSwitch: cfg.CoinDoorClosedSwitch,
			GameOnSolenoid:       cfg.GameOnSolenoid,
			Inventory:            &inventory.Inventory{},
		},
	}

	// ---- boards ----
	for _, board := range cfg.Boards {
		b.block(board.Number, TopicPlatform).add(TopicPlatform, platform)
		b.block(board.Number, TopicCoinDoorClosedSwitch).add(KeyNumber, uint32(cfg.CoinDoorClosedSwitch))
		b.block(board.Number, TopicGameOnSolenoid).add(KeyNumber, uint32(cfg.GameOnSolenoid))

		if board.PollEvents {
			b.plan.PollBoards = append(b.plan.PollBoards, board.Number)
		}
	}

	// ---- switches ----
	for _, s := range cfg.Switches {
		blk := b.block(s.Board, TopicSwitches)
		blk.add(KeyPort, uint32(s.Port))
		blk.add(KeyNumber, uint32(s.Number))

		b.plan.Inventory.AddSwitch(inventory.Switch{
			Board:       s.Board,
			Port:        s.Port,
			Number:      s.Number,
			Description: s.Description,
		})
	}

	for _, m := range cfg.SwitchMatrices {
		b.switchMatrix(m)
	}

	for _, p := range cfg.PWMOutputs {
		if err := b.pwmOutput(p); err != nil {
			return nil, err
		}
	}

	for _, l := range cfg.LEDStripes {
		if err := b.ledStripe(l); err != nil {
			return nil, err
		}
	}

	return b.plan, nil
}

// ------------------------------------------------------------
// block builder
// ------------------------------------------------------------

type builder struct {
	plan *Plan
}

type block struct {
	b     *builder
	board uint8
	topic byte
	index byte
}

// block opens a new configuration block; its first record gets index 0.
func (b *builder) block(board uint8, topic byte) *block {
	return &block{b: b, board: board, topic: topic}
}

func (blk *block) add(key byte, v uint32) {
	blk.b.plan.Records = append(blk.b.plan.Records, wire.ConfigRecord{
		Board: blk.board,
		Topic: blk.topic,
		Index: blk.index,
		Key:   key,
		Value: v,
	})
	blk.index++
}

// ------------------------------------------------------------
// sections
// ------------------------------------------------------------

func (b *builder) switchMatrix(m config.SwitchMatrixConfig) {
	blk := b.block(m.Board, TopicSwitchMatrix)
	blk.add(KeyActiveLow, boolValue(m.ActiveLow))
	blk.add(KeyMaxPulseTime, m.PulseTime)

	for _, c := range m.Columns {
		blk.add(KeyType, MatrixColumn)
		blk.add(KeyNumber, c.Number)
		blk.add(KeyPort, uint32(c.Port))
	}
	for _, r := range m.Rows {
		blk.add(KeyType, MatrixRow)
		blk.add(KeyNumber, r.Number)
		blk.add(KeyPort, uint32(r.Port))
	}
}

func (b *builder) pwmOutput(p config.PWMOutputConfig) error {
	kind, err := coilType(p.Type)
	if err != nil {
		return err
	}

	blk := b.block(p.Board, TopicPWM)
	blk.add(KeyPort, uint32(p.Port))
	blk.add(KeyNumber, uint32(p.Number))
	blk.add(KeyPower, p.Power)
	blk.add(KeyMinPulseTime, p.MinPulseTime)
	blk.add(KeyMaxPulseTime, p.MaxPulseTime)
	blk.add(KeyHoldPower, p.HoldPower)
	blk.add(KeyHoldPowerActivationTime, p.HoldPowerActivationTime)
	blk.add(KeyFastSwitch, p.FastFlipSwitch)
	blk.add(KeyType, uint32(kind))

	for _, e := range p.Effects {
		eb := b.block(p.Board, TopicPWMEffect)
		eb.add(KeyPort, uint32(p.Port))
		eb.add(KeyDuration, e.Duration)
		eb.add(KeyEffect, e.Effect)
		eb.add(KeyFrequency, e.Frequency)
		eb.add(KeyMaxIntensity, e.MaxIntensity)
		eb.add(KeyMinIntensity, e.MinIntensity)
		eb.add(KeyMode, e.Mode)
		eb.add(KeyPriority, e.Priority)
		eb.add(KeyRepeat, repeatValue(e.Repeat))

		if err := b.triggers(e.Trigger, TopicPWMEffect, p.Board, p.Port); err != nil {
			return fmt.Errorf("translate: pwm output %d: %w", p.Number, err)
		}
	}

	b.plan.Inventory.AddCoil(inventory.Coil{
		Board:       p.Board,
		Port:        p.Port,
		Type:        kind,
		Number:      p.Number,
		Description: p.Description,
	})
	return nil
}

func (b *builder) ledStripe(l config.LEDStripeConfig) error {
	order := ColorOrder(l.LEDType)
	if order == 0 {
		return fmt.Errorf("translate: led stripe on board %d port %d: unknown ledType %q", l.Board, l.Port, l.LEDType)
	}

	blk := b.block(l.Board, TopicLEDString)
	blk.add(KeyPort, uint32(l.Port))
	blk.add(KeyType, uint32(order))
	blk.add(KeyBrightness, l.Brightness)
	blk.add(KeyAmountLEDs, l.Amount)
	blk.add(KeyAfterGlow, l.AfterGlow)
	blk.add(KeyLightUp, l.LightUp)

	for _, s := range l.Segments {
		sb := b.block(l.Board, TopicLEDSegment)
		sb.add(KeyPort, uint32(l.Port))
		sb.add(KeyNumber, s.Number)
		sb.add(KeyFrom, s.From)
		sb.add(KeyTo, s.To)
	}

	for _, e := range l.Effects {
		color, err := config.ParseColor(e.Color)
		if err != nil {
			return fmt.Errorf("translate: led effect on segment %d: %w", e.Segment, err)
		}

		eb := b.block(l.Board, TopicLEDEffect)
		eb.add(KeyPort, uint32(l.Port))
		eb.add(TopicLEDSegment, e.Segment)
		eb.add(KeyColor, color)
		eb.add(KeyDuration, e.Duration)
		eb.add(KeyEffect, e.Effect)
		eb.add(KeyReverse, e.Reverse)
		eb.add(KeySpeed, e.Speed)
		eb.add(KeyMode, e.Mode)
		eb.add(KeyPriority, e.Priority)
		eb.add(KeyRepeat, repeatValue(e.Repeat))

		if err := b.triggers(e.Trigger, TopicLEDEffect, l.Board, l.Port); err != nil {
			return fmt.Errorf("translate: led effect on segment %d: %w", e.Segment, err)
		}
	}

	groups := []struct {
		kind inventory.LampType
		leds []config.LEDConfig
	}{
		{inventory.LampLED, l.Lamps},
		{inventory.LampFlasher, l.Flashers},
		{inventory.LampGI, l.GI},
	}
	for _, g := range groups {
		for _, led := range g.leds {
			if err := b.led(l.Board, l.Port, g.kind, led); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) led(board, port uint8, kind inventory.LampType, led config.LEDConfig) error {
	color, err := config.ParseColor(led.Color)
	if err != nil {
		return fmt.Errorf("translate: led %d: %w", led.Number, err)
	}

	blk := b.block(board, TopicLamps)
	blk.add(KeyPort, uint32(port))
	blk.add(KeyType, uint32(kind))
	blk.add(KeyNumber, uint32(led.Number))
	blk.add(KeyLEDNumber, led.LEDNumber)
	blk.add(KeyColor, color)

	b.plan.Inventory.AddLamp(inventory.Lamp{
		Board:       board,
		Port:        port,
		Type:        kind,
		Number:      led.Number,
		Description: led.Description,
		Color:       color,
	})
	return nil
}

// triggers emits one trigger block per entry. owner is the effect topic the
// trigger belongs to.
func (b *builder) triggers(ts []config.TriggerConfig, owner byte, board, port uint8) error {
	for _, t := range ts {
		src, err := triggerSource(t.Source)
		if err != nil {
			return err
		}

		blk := b.block(board, TopicTrigger)
		blk.add(KeyPort, uint32(port))
		blk.add(KeyType, uint32(owner))
		blk.add(KeySource, uint32(src))
		blk.add(KeyNumber, t.Number)
		blk.add(KeyValue, t.Value)
	}
	return nil
}

// ------------------------------------------------------------
// value mapping
// ------------------------------------------------------------

func platformCode(p string) (uint32, error) {
	switch p {
	case config.PlatformWPC, "":
		return PlatformWPC, nil
	case config.PlatformDataEast:
		return PlatformDataEast, nil
	case config.PlatformSys11:
		return PlatformSys11, nil
	case config.PlatformSys4:
		return PlatformSys4, nil
	}
	return 0, fmt.Errorf("translate: unknown platform %q", p)
}

func coilType(t string) (inventory.CoilType, error) {
	switch t {
	case config.PWMTypeCoil, "":
		return inventory.CoilSolenoid, nil
	case config.PWMTypeFlasher:
		return inventory.CoilFlasher, nil
	case config.PWMTypeLamp:
		return inventory.CoilLamp, nil
	case config.PWMTypeMotor:
		return inventory.CoilMotor, nil
	}
	return 0, fmt.Errorf("translate: unknown pwm type %q", t)
}

func triggerSource(s string) (byte, error) {
	switch s {
	case config.TriggerSwitch, "":
		return wire.SourceSwitch, nil
	case config.TriggerSolenoid:
		return wire.SourceSolenoid, nil
	case config.TriggerLight:
		return wire.SourceLight, nil
	}
	return 0, fmt.Errorf("unknown trigger source %q", s)
}

func repeatValue(r int) uint32 {
	if r < 0 {
		return RepeatForever
	}
	return uint32(r)
}

func boolValue(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
