// internal/config/config.go
package config

// Config is the machine document. Keys are camelCase to stay compatible with
// existing machine files.
type Config struct {
	SerialPort           string `yaml:"serialPort"`
	Rom                  string `yaml:"rom"`
	Platform             string `yaml:"platform"`
	Debug                bool   `yaml:"debug"`
	CoinDoorClosedSwitch uint16 `yaml:"coinDoorClosedSwitch"`
	GameOnSolenoid       uint16 `yaml:"gameOnSolenoid"`

	Bus    BusConfig     `yaml:"bus"`
	Mirror *MirrorConfig `yaml:"mirror"`

	Boards   []BoardConfig  `yaml:"boards"`
	Switches []SwitchConfig `yaml:"switches"`

	// Legacy single-matrix keys. Normalize folds them into SwitchMatrices.
	SwitchMatrix   *SwitchMatrixConfig  `yaml:"switchMatrix"`
	SwitchMatrix2  *SwitchMatrixConfig  `yaml:"switchMatrix2"`
	SwitchMatrices []SwitchMatrixConfig `yaml:"switchMatrices"`

	PWMOutputs []PWMOutputConfig `yaml:"pwmOutput"`
	LEDStripes []LEDStripeConfig `yaml:"ledStripes"`
}

// ---- PLATFORMS ----

const (
	PlatformWPC      = "WPC"
	PlatformDataEast = "DE"
	PlatformSys4     = "SYS4"
	PlatformSys11    = "SYS11"
)

// ---- BUS (host only) ----

type BusConfig struct {
	Driver  string      `yaml:"driver"` // bugst | goburrow
	RS485   RS485Config `yaml:"rs485"`
	Capture string      `yaml:"capture"` // optional pcap path
}

type RS485Config struct {
	Enabled              bool `yaml:"enabled"`
	DelayRtsBeforeSendUs int  `yaml:"delayRtsBeforeSendUs"`
	DelayRtsAfterSendUs  int  `yaml:"delayRtsAfterSendUs"`
	RtsHighDuringSend    bool `yaml:"rtsHighDuringSend"`
	RtsHighAfterSend     bool `yaml:"rtsHighAfterSend"`
	RxDuringTx           bool `yaml:"rxDuringTx"`
}

// ---- MIRROR (host only, optional) ----

type MirrorConfig struct {
	Endpoint     string `yaml:"endpoint"`
	UnitID       uint8  `yaml:"unitId"`
	TimeoutMs    int    `yaml:"timeoutMs"`
	SwitchOffset uint16 `yaml:"switchOffset"`
	StatusOffset uint16 `yaml:"statusOffset"`
}

// ---- BOARDS ----

type BoardConfig struct {
	Number     uint8 `yaml:"number"`
	PollEvents bool  `yaml:"pollEvents"`
}

// ---- SWITCHES ----

type SwitchConfig struct {
	Board       uint8  `yaml:"board"`
	Port        uint8  `yaml:"port"`
	Number      uint16 `yaml:"number"`
	Description string `yaml:"description"`
}

type SwitchMatrixConfig struct {
	Board     uint8              `yaml:"board"`
	ActiveLow bool               `yaml:"activeLow"`
	PulseTime uint32             `yaml:"pulseTime"`
	Columns   []MatrixLineConfig `yaml:"columns"`
	Rows      []MatrixLineConfig `yaml:"rows"`
}

type MatrixLineConfig struct {
	Number uint32 `yaml:"number"`
	Port   uint8  `yaml:"port"`
}

// ---- PWM OUTPUTS ----

// PWM output types.
const (
	PWMTypeCoil    = "coil"
	PWMTypeFlasher = "flasher"
	PWMTypeLamp    = "lamp"
	PWMTypeMotor   = "motor"
)

type PWMOutputConfig struct {
	Board                   uint8             `yaml:"board"`
	Port                    uint8             `yaml:"port"`
	Number                  uint16            `yaml:"number"`
	Description             string            `yaml:"description"`
	Power                   uint32            `yaml:"power"`
	MinPulseTime            uint32            `yaml:"minPulseTime"`
	MaxPulseTime            uint32            `yaml:"maxPulseTime"`
	HoldPower               uint32            `yaml:"holdPower"`
	HoldPowerActivationTime uint32            `yaml:"holdPowerActivationTime"`
	FastFlipSwitch          uint32            `yaml:"fastFlipSwitch"`
	Type                    string            `yaml:"type"`
	Effects                 []PWMEffectConfig `yaml:"effects"`
}

type PWMEffectConfig struct {
	Duration     uint32          `yaml:"duration"`
	Effect       uint32          `yaml:"effect"`
	Frequency    uint32          `yaml:"frequency"`
	MaxIntensity uint32          `yaml:"maxIntensity"`
	MinIntensity uint32          `yaml:"minIntensity"`
	Mode         uint32          `yaml:"mode"`
	Priority     uint32          `yaml:"priority"`
	Repeat       int             `yaml:"repeat"` // -1 repeats forever
	Trigger      []TriggerConfig `yaml:"trigger"`
}

// Trigger sources.
const (
	TriggerSwitch   = "W"
	TriggerSolenoid = "S"
	TriggerLight    = "L"
)

type TriggerConfig struct {
	Source string `yaml:"source"`
	Number uint32 `yaml:"number"`
	Value  uint32 `yaml:"value"`
}

// ---- LED STRIPES ----

type LEDStripeConfig struct {
	Board      uint8  `yaml:"board"`
	Port       uint8  `yaml:"port"`
	LEDType    string `yaml:"ledType"` // color order, e.g. GRB or RGBW
	Brightness uint32 `yaml:"brightness"`
	Amount     uint32 `yaml:"amount"`
	AfterGlow  uint32 `yaml:"afterGlow"`
	LightUp    uint32 `yaml:"lightUp"`

	Segments []LEDSegmentConfig `yaml:"segments"`
	Effects  []LEDEffectConfig  `yaml:"effects"`
	Lamps    []LEDConfig        `yaml:"lamps"`
	Flashers []LEDConfig        `yaml:"flashers"`
	GI       []LEDConfig        `yaml:"gi"`
}

type LEDSegmentConfig struct {
	Number uint32 `yaml:"number"`
	From   uint32 `yaml:"from"`
	To     uint32 `yaml:"to"`
}

type LEDEffectConfig struct {
	Segment  uint32          `yaml:"segment"`
	Color    string          `yaml:"color"` // hex RRGGBB or WWRRGGBB
	Duration uint32          `yaml:"duration"`
	Effect   uint32          `yaml:"effect"`
	Reverse  uint32          `yaml:"reverse"`
	Speed    uint32          `yaml:"speed"`
	Mode     uint32          `yaml:"mode"`
	Priority uint32          `yaml:"priority"`
	Repeat   int             `yaml:"repeat"`
	Trigger  []TriggerConfig `yaml:"trigger"`
}

// LEDConfig is one addressable lamp, flasher or GI LED.
type LEDConfig struct {
	Number      uint16 `yaml:"number"`
	LEDNumber   uint32 `yaml:"ledNumber"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
}
