// Package channel implements the channel mask and channel table that map
// channel names to bit positions in an 8-bit spatial-block channel mask.
package channel

import "math/bits"

// Mask is an 8-bit bitfield; bit i set means channel i is present at a
// given spatial block.
type Mask uint8

// Popcount returns the number of channels present in m.
func Popcount(m Mask) int {
	return bits.OnesCount8(uint8(m))
}

// FirstChannel returns the position of the lowest set bit in m.
func FirstChannel(m Mask) (bit int, ok bool) {
	if m == 0 {
		return 0, false
	}
	return bits.TrailingZeros8(uint8(m)), true
}

// ActiveOffset returns the index, among the channels present in m in
// ascending bit order, of channel c — or ok=false if bit c is not set in
// m. This is popcount(m & ((1<<c)-1)).
func ActiveOffset(m Mask, c int) (offset int, ok bool) {
	if c < 0 || c >= 8 || m&(1<<uint(c)) == 0 {
		return 0, false
	}
	lower := Mask(uint8(1)<<uint(c) - 1)
	return Popcount(m & lower), true
}

// Set returns m with bit c set.
func (m Mask) Set(c int) Mask {
	return m | (1 << uint(c))
}

// Has reports whether bit c is set in m.
func (m Mask) Has(c int) bool {
	return m&(1<<uint(c)) != 0
}
