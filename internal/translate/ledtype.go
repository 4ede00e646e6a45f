// internal/translate/ledtype.go
package translate

import "strings"

// ColorOrder encodes a NeoPixel channel order ("GRB", "WRGB", ...) the way
// the Adafruit NeoPixel library does: the byte offset of each channel packed
// as (w<<6)|(r<<4)|(g<<2)|b. Three-channel orders repeat the red offset in
// the white slot. Unknown orders return 0.
func ColorOrder(order string) uint8 {
	order = strings.ToUpper(order)
	if len(order) != 3 && len(order) != 4 {
		return 0
	}

	r := strings.IndexByte(order, 'R')
	g := strings.IndexByte(order, 'G')
	b := strings.IndexByte(order, 'B')
	w := strings.IndexByte(order, 'W')
	if r < 0 || g < 0 || b < 0 {
		return 0
	}

	if len(order) == 3 {
		w = r
	} else if w < 0 {
		return 0
	}

	return uint8(w<<6 | r<<4 | g<<2 | b)
}
