// internal/wire/event.go
package wire

// Event is the generic actuation / control / status message exchanged with
// the I/O boards. Some Source values are reserved control codes; for those,
// ID is reused as a secondary parameter (e.g. the polled board number).
type Event struct {
	Source byte
	ID     uint16
	Value  byte
}

// ---- SOURCE CODES ----
// Values are ASCII mnemonics shared with the I/O board firmware.

// SourceIllegal marks a corrupt frame. It is never a valid source.
const SourceIllegal byte = 0

// SourceNull is the no-op event and the burst terminator.
// Boards send it to signal "no more events in this response burst".
const SourceNull byte = 'N'

const (
	SourcePollEvents    byte = '@'
	SourceDebug         byte = 'B'
	SourceConfiguration byte = 'C'
	SourceEffect        byte = 'F'
	SourceGI            byte = 'G'
	SourceLight         byte = 'L'
	SourcePing          byte = 'P'
	SourcePong          byte = 'Q'
	SourceReadSwitches  byte = 'R'
	SourceSolenoid      byte = 'S'
	SourceSwitch        byte = 'W'
	SourceReset         byte = 'X'
	SourceRun           byte = 'Y'
)

// NewEvent builds a control event without a secondary parameter.
// Event id 0 is illegal on the wire, so 1 is used.
func NewEvent(source byte) Event {
	return Event{Source: source, ID: 1, Value: 0}
}

// ConfigRecord is one key/value line of a configuration block.
// Records sharing Board+Topic with ascending Index compose one block.
type ConfigRecord struct {
	Board byte
	Topic byte
	Index byte
	Key   byte
	Value uint32
}
