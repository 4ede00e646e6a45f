// internal/wire/frame.go
package wire

import "encoding/binary"

// Frame markers. Layout is protocol-locked.
const (
	StartByte byte = 0xFF
	TrailerHi byte = 0xAA
	TrailerLo byte = 0x55
)

// Frame sizes in bytes.
const (
	EventFrameSize  = 7
	ConfigFrameSize = 12
)

// configSourceReserved is the source byte of every configuration frame.
// Present on the wire, unused by the boards.
const configSourceReserved byte = 0

// EncodeEvent encodes an event frame:
//
//	FF src idHi idLo value AA 55
func EncodeEvent(e Event) [EventFrameSize]byte {
	var f [EventFrameSize]byte
	f[0] = StartByte
	f[1] = e.Source
	binary.BigEndian.PutUint16(f[2:4], e.ID)
	f[4] = e.Value
	f[5] = TrailerHi
	f[6] = TrailerLo
	return f
}

// EncodeConfigRecord encodes a configuration frame:
//
//	FF 00 board topic index key v3 v2 v1 v0 AA 55
//
// Configuration frames are write-only; there is no decoder for them.
func EncodeConfigRecord(r ConfigRecord) [ConfigFrameSize]byte {
	var f [ConfigFrameSize]byte
	f[0] = StartByte
	f[1] = configSourceReserved
	f[2] = r.Board
	f[3] = r.Topic
	f[4] = r.Index
	f[5] = r.Key
	binary.BigEndian.PutUint32(f[6:10], r.Value)
	f[10] = TrailerHi
	f[11] = TrailerLo
	return f
}
