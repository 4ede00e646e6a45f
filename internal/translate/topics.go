// internal/translate/topics.go
package translate

// Configuration topics and keys share one byte namespace: a few topics
// (platform, LED segment) also appear as keys. Values are ASCII mnemonics
// matching the I/O board firmware.

// ---- TOPICS ----

const (
	TopicPlatform             byte = 'p'
	TopicCoinDoorClosedSwitch byte = 'c'
	TopicGameOnSolenoid       byte = 'g'
	TopicSwitches             byte = 'W'
	TopicSwitchMatrix         byte = 'M'
	TopicPWM                  byte = 'P'
	TopicPWMEffect            byte = 'E'
	TopicTrigger              byte = 'T'
	TopicLEDString            byte = 'L'
	TopicLEDSegment           byte = 'S'
	TopicLEDEffect            byte = 'F'
	TopicLamps                byte = 'l'
)

// ---- KEYS ----

const (
	KeyPort                    byte = 'o'
	KeyNumber                  byte = 'n'
	KeyType                    byte = 't'
	KeySource                  byte = 's'
	KeyValue                   byte = 'v'
	KeyActiveLow               byte = 'a'
	KeyPower                   byte = 'w'
	KeyMinPulseTime            byte = 'm'
	KeyMaxPulseTime            byte = 'x'
	KeyHoldPower               byte = 'h'
	KeyHoldPowerActivationTime byte = 'H'
	KeyFastSwitch              byte = 'f'
	KeyDuration                byte = 'd'
	KeyEffect                  byte = 'e'
	KeyFrequency               byte = 'q'
	KeyMaxIntensity            byte = 'I'
	KeyMinIntensity            byte = 'i'
	KeyMode                    byte = 'D'
	KeyPriority                byte = 'y'
	KeyRepeat                  byte = 'r'
	KeyBrightness              byte = 'B'
	KeyAmountLEDs              byte = 'A'
	KeyAfterGlow               byte = 'G'
	KeyLightUp                 byte = 'U'
	KeyLEDNumber               byte = 'N'
	KeyColor                   byte = 'C'
	KeyFrom                    byte = 'b'
	KeyTo                      byte = 'z'
	KeyReverse                 byte = 'R'
	KeySpeed                   byte = 'V'
)

// ---- VALUES ----

// Platform codes.
const (
	PlatformWPC      uint32 = 1
	PlatformDataEast uint32 = 2
	PlatformSys11    uint32 = 3
	PlatformSys4     uint32 = 4
)

// Switch matrix line kinds.
const (
	MatrixColumn uint32 = 1
	MatrixRow    uint32 = 2
)

// RepeatForever is the wire value for an effect repeat of -1.
const RepeatForever uint32 = 255
