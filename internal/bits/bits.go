// Package bits provides the packed-bitstream primitives shared by the
// fast-field codecs: bit-width computation, a thin bitio.Writer wrapper for
// writing fixed-width unsigned fields, and a random-access bit reader for
// the ordinal-indexed Get every codec's reader implements.
package bits

import (
	"github.com/icza/bitio"
)

// Width returns the number of bits needed to represent values in 0..=delta,
// i.e. ceil(log2(delta+1)). Width(0) is 0: a column whose residuals (or
// min==max bit-packed values) are all zero needs no storage bits at all.
func Width(delta uint64) uint8 {
	if delta == 0 {
		return 0
	}
	var n uint8
	for delta > 0 {
		n++
		delta >>= 1
	}
	return n
}

// WriteFixed writes x using exactly width bits, most-significant-bit first
// (the order bitio.Writer packs bits in); the packed stream is not in
// little-endian bit order. width may be 0, in which case nothing is written.
func WriteFixed(bw *bitio.Writer, x uint64, width uint8) error {
	if width == 0 {
		return nil
	}
	return bw.WriteBits(x, width)
}

// GetBits extracts width bits (width <= 64) starting at the given absolute
// bit offset within data, most-significant-bit first, matching the order
// bitio.Writer packs bits in. Every codec's random-access Get goes through
// this instead of seeking a bitio.Reader, since ordinals are accessed out of
// order and bitio.Reader only reads forward. Reading stops at the end of
// data, so an offset past it never indexes out of range.
func GetBits(data []byte, bitOffset uint64, width uint8) uint64 {
	if width == 0 {
		return 0
	}
	var result uint64
	var read uint8
	byteIdx := bitOffset / 8
	bitInByte := uint8(bitOffset % 8)
	for read < width {
		if byteIdx >= uint64(len(data)) {
			break
		}
		avail := 8 - bitInByte
		take := avail
		if width-read < take {
			take = width - read
		}
		b := data[byteIdx]
		shift := avail - take
		mask := byte(1<<take - 1)
		chunk := (b >> shift) & mask
		result = result<<take | uint64(chunk)
		read += take
		byteIdx++
		bitInByte = 0
	}
	return result
}
