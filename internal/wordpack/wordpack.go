// Package wordpack converts between 64-byte blocks and the 16-word arrays
// the compression function operates on. All conversions are little-endian,
// per the engine's endianness discipline.
package wordpack

import "encoding/binary"

// BlockFromBytes reads up to 64 bytes of block into 16 little-endian words,
// zero-padding any bytes beyond len(block).
func BlockFromBytes(block []byte) [16]uint32 {
	var buf [64]byte
	copy(buf[:], block)

	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
	}
	return m
}

// BytesFromWords writes the 16 words of out as 64 little-endian bytes.
func BytesFromWords(out *[16]uint32, dst *[64]byte) {
	for i, w := range out {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], w)
	}
}

// CVFromBytes reads exactly 32 bytes as 8 little-endian words.
func CVFromBytes(b []byte) [8]uint32 {
	_ = b[31] // bounds check hint to the compiler, see golang.org/issue/14808
	var cv [8]uint32
	for i := range cv {
		cv[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return cv
}

// CVToBytes writes cv as 32 little-endian bytes.
func CVToBytes(cv *[8]uint32, dst []byte) {
	_ = dst[31] // bounds check hint to the compiler, see golang.org/issue/14808
	for i, w := range cv {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], w)
	}
}

// ParentBlock concatenates a left and right chaining value into the 16-word
// message block of a parent compression.
func ParentBlock(left, right *[8]uint32) [16]uint32 {
	var m [16]uint32
	copy(m[:8], left[:])
	copy(m[8:], right[:])
	return m
}
