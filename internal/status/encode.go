// internal/status/encode.go
package status

// Encode converts a Snapshot into the live part of the status block
// (slots 0 up to the reserved range). The name is written separately.
// Layout is locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotReservedStart)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotActiveMask] = Mask(s.Active)
	regs[SlotPollMask] = Mask(s.Poll)
	regs[SlotPollCount] = uint16(len(s.Poll))

	for i, b := range s.Poll {
		if i >= SlotPollOrderSlots*4 {
			break
		}
		shift := uint(12 - 4*(i%4))
		regs[SlotPollOrderStart+i/4] |= uint16(b&0x0F) << shift
	}

	return regs
}

// EncodeBlock returns the full block: live slots, reserved zeros, name.
func EncodeBlock(s Snapshot, name string) []uint16 {
	regs := make([]uint16, SlotsPerBlock)
	copy(regs, Encode(s))
	copy(regs[SlotNameStart:], EncodeName(name))
	return regs
}

// Mask sets bit b for each board number below MaxBoards.
func Mask(boards []uint8) uint16 {
	var m uint16
	for _, b := range boards {
		if b < MaxBoards {
			m |= 1 << b
		}
	}
	return m
}

// EncodeName packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeName(name string) []uint16 {
	out := make([]uint16, SlotNameSlots)

	b := []byte(name)
	if len(b) > NameMaxChars {
		b = b[:NameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < NameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
