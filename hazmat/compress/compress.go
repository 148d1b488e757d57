// Package compress implements the BLAKE3 compression function: a single
// call over a 16-word state derived from the BLAKE2s permutation, reduced
// to 7 rounds with a message schedule that rotates by a fixed permutation
// instead of a 10-entry SIGMA table.
//
// This is the hazmat layer: everything here is a pure function over plain
// words, with no notion of chunks, trees, or modes. Callers are expected to
// be the chunk state and SIMD kernel packages, not application code.
package compress

import "math/bits"

// IV holds the eight BLAKE3 initialization words. They are identical to the
// BLAKE2s IV and serve as the default chaining value for the plain-hash
// mode.
var IV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// Flag bits, combined with bitwise OR to domain-separate compressions.
const (
	ChunkStart        uint32 = 1 << 0
	ChunkEnd          uint32 = 1 << 1
	Parent            uint32 = 1 << 2
	Root              uint32 = 1 << 3
	KeyedHash         uint32 = 1 << 4
	DeriveKeyContext  uint32 = 1 << 5
	DeriveKeyMaterial uint32 = 1 << 6
)

// msgPermutation is applied to the message schedule of round r to produce
// the schedule for round r+1.
var msgPermutation = [16]int{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}

// rounds is the number of G-function rounds per compression.
const rounds = 7

// Compress evaluates the compression function over the given input chaining
// value, message block, counter, block length, and flags, returning the
// full 16-word output. The first 8 words are the new chaining value; all 16
// are the extended output used by root and XOF compressions.
func Compress(cv *[8]uint32, block *[16]uint32, counter uint64, blockLen, flags uint32) [16]uint32 {
	var state [16]uint32
	copy(state[:8], cv[:])
	copy(state[8:12], IV[:4])
	state[12] = uint32(counter)
	state[13] = uint32(counter >> 32)
	state[14] = blockLen
	state[15] = flags

	m := *block
	for r := 0; r < rounds; r++ {
		round(&state, &m)
		if r < rounds-1 {
			m = permute(&m)
		}
	}

	for i := 0; i < 8; i++ {
		state[i] ^= state[i+8]
		state[i+8] ^= cv[i]
	}

	return state
}

// permute returns the message words reordered by msgPermutation.
func permute(m *[16]uint32) [16]uint32 {
	var out [16]uint32
	for i, src := range msgPermutation {
		out[i] = m[src]
	}
	return out
}

// round applies the G function to the four columns, then the four
// diagonals, of the state, using the 16 words of m as the round's message
// schedule.
func round(state *[16]uint32, m *[16]uint32) {
	g(state, 0, 4, 8, 12, m[0], m[1])
	g(state, 1, 5, 9, 13, m[2], m[3])
	g(state, 2, 6, 10, 14, m[4], m[5])
	g(state, 3, 7, 11, 15, m[6], m[7])

	g(state, 0, 5, 10, 15, m[8], m[9])
	g(state, 1, 6, 11, 12, m[10], m[11])
	g(state, 2, 7, 8, 13, m[12], m[13])
	g(state, 3, 4, 9, 14, m[14], m[15])
}

// g is the BLAKE2-style quarter-round mixing function over state words
// a, b, c, d with message words mx, my.
func g(state *[16]uint32, a, b, c, d int, mx, my uint32) {
	state[a] += state[b] + mx
	state[d] = bits.RotateLeft32(state[d]^state[a], -16)
	state[c] += state[d]
	state[b] = bits.RotateLeft32(state[b]^state[c], -12)

	state[a] += state[b] + my
	state[d] = bits.RotateLeft32(state[d]^state[a], -8)
	state[c] += state[d]
	state[b] = bits.RotateLeft32(state[b]^state[c], -7)
}

// ChainingValue truncates a compression output to its first 8 words, the
// chaining value used by every non-root, non-XOF consumer.
func ChainingValue(out *[16]uint32) [8]uint32 {
	var cv [8]uint32
	copy(cv[:], out[:8])
	return cv
}
