// internal/status/constants.go
package status

// Board status block layout constants.
// These values define the published layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed number of holding registers in the block.
const SlotsPerBlock = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the bus health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code (see Err* below).
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the bus has been unhealthy.
const SlotSecondsInError = 2

// SlotActiveMask has bit i set when board i answered discovery.
const SlotActiveMask = 3

// SlotPollMask has bit i set when board i is on the switch-poll list.
const SlotPollMask = 4

// SlotPollCount holds the length of the switch-poll list.
const SlotPollCount = 5

// SlotPollOrderStart is the first of four slots holding the poll order,
// one board number per nibble, most significant nibble first.
const SlotPollOrderStart = 6

// SlotPollOrderSlots is the number of slots reserved for the poll order.
const SlotPollOrderSlots = 4

// ---- RESERVED RANGE ----

// Slot 10 is reserved for future use.
const SlotReservedStart = 10
const SlotReservedEnd = 10

// ---- ROM NAME ----

// SlotNameStart is the first slot used for the ROM name.
// The name is always placed at the END of the status block.
const SlotNameStart = 11

// SlotNameSlots is the number of slots reserved for the ROM name.
const SlotNameSlots = 8

// SlotNameEnd is the last slot used for the ROM name (inclusive).
const SlotNameEnd = SlotNameStart + SlotNameSlots - 1

// ---- LIMITS ----

// NameMaxChars is the maximum number of ASCII characters stored for the name.
const NameMaxChars = 16

// MaxBoards is the bus address space covered by the masks.
const MaxBoards = 16

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK: connected and every polled board answered discovery.
const HealthOK uint16 = 1

// HealthError represents a bus error state.
const HealthError uint16 = 2

// HealthDisconnected: the serial link is closed.
const HealthDisconnected uint16 = 3

// ---- ERROR CODES ----

// ErrNone is reported while healthy.
const ErrNone uint16 = 0

// ErrLinkClosed: the serial port is not open.
const ErrLinkClosed uint16 = 1

// ErrBoardMissing: a board on the poll list did not answer discovery.
const ErrBoardMissing uint16 = 2
