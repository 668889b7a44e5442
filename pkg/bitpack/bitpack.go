// Package bitpack reads and writes big-endian bit groups inside byte buffers.
//
// Bit k of a buffer lives in byte k/8 at bit position 7-(k%8), so bit 0 is
// the most significant bit of the first byte. Groups are written and read
// most significant bit first.
package bitpack

// WordBits is the width of one BIP-39 word index.
const WordBits = 11

// ByteLen returns the number of bytes needed to hold bits bits.
func ByteLen(bits int) int {
	return (bits + 7) / 8
}

// SetBit sets bit k in buf.
func SetBit(buf []byte, k int) {
	buf[k/8] |= 1 << (7 - uint(k%8))
}

// Bit reports whether bit k in buf is set.
func Bit(buf []byte, k int) bool {
	return buf[k/8]&(1<<(7-uint(k%8))) != 0
}

// PutBits writes the low width bits of v into buf starting at bit k.
// Bits are ORed in, so the target range must be zero beforehand.
// Width must be in [1, 32].
func PutBits(buf []byte, k, width int, v uint32) {
	for i := 0; i < width; i++ {
		if v&(1<<uint(width-1-i)) != 0 {
			SetBit(buf, k+i)
		}
	}
}

// Bits reads width bits from buf starting at bit k.
// Width must be in [1, 32].
func Bits(buf []byte, k, width int) uint32 {
	var v uint32
	for i := 0; i < width; i++ {
		v <<= 1
		if Bit(buf, k+i) {
			v |= 1
		}
	}
	return v
}

// PutUint11 writes an 11-bit value as group pos, i.e. at bit pos*11.
func PutUint11(buf []byte, pos int, v uint16) {
	PutBits(buf, pos*WordBits, WordBits, uint32(v))
}

// Uint11 reads 11-bit group pos, i.e. the bits starting at pos*11.
func Uint11(buf []byte, pos int) uint16 {
	return uint16(Bits(buf, pos*WordBits, WordBits))
}
