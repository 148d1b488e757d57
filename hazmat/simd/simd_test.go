package simd

import (
	"testing"

	"github.com/codahale/blake3/hazmat/compress"
)

// ptn returns a byte slice of length n using the repeating 0x00..0xFA test
// pattern shared across the package's tests.
func ptn(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func testKey() [8]uint32 {
	return compress.IV
}

// TestChunkCVsX2MatchesSerial checks that the 2-lane batch kernel produces
// exactly the chaining values HashChunk would for each lane independently.
func TestChunkCVsX2MatchesSerial(t *testing.T) {
	key := testKey()
	data := [2][]byte{ptn(ChunkSize), ptn(ChunkSize)[1:]}
	data[1] = append(append([]byte(nil), data[1]...), 0xAA)

	const baseCounter = 5
	got := ChunkCVsX2(&key, baseCounter, 0, data)

	for lane := range data {
		want := HashChunk(&key, baseCounter+uint64(lane), 0, data[lane])
		if got[lane] != want {
			t.Errorf("lane %d: got %x want %x", lane, got[lane], want)
		}
	}
}

// TestChunkCVsX4MatchesSerial checks the 4-lane batch kernel against serial
// HashChunk, the defining property of the SIMD kernel contract: batched and
// scalar evaluation must agree bit-for-bit.
func TestChunkCVsX4MatchesSerial(t *testing.T) {
	key := testKey()
	var data [4][]byte
	for i := range data {
		data[i] = ptn(ChunkSize + i*37)[:ChunkSize]
	}

	const baseCounter = 100
	const flags = compress.KeyedHash
	got := ChunkCVsX4(&key, baseCounter, flags, data)

	for lane := range data {
		want := HashChunk(&key, baseCounter+uint64(lane), flags, data[lane])
		if got[lane] != want {
			t.Errorf("lane %d: got %x want %x", lane, got[lane], want)
		}
	}
}

// TestParentCVsX2MatchesSerial checks the 2-lane parent kernel against
// individual Compress calls over each pair's parent block.
func TestParentCVsX2MatchesSerial(t *testing.T) {
	key := testKey()
	pairs := [2]ParentPair{
		{Left: HashChunk(&key, 0, 0, ptn(ChunkSize)), Right: HashChunk(&key, 1, 0, ptn(ChunkSize+1))},
		{Left: HashChunk(&key, 2, 0, ptn(ChunkSize+2)), Right: HashChunk(&key, 3, 0, ptn(ChunkSize+3))},
	}

	got := ParentCVsX2(&key, compress.Parent, pairs)

	for lane, pr := range pairs {
		block := parentBlock(&pr)
		out := compress.Compress(&key, &block, 0, blockSize, compress.Parent)
		want := compress.ChainingValue(&out)
		if got[lane] != want {
			t.Errorf("lane %d: got %x want %x", lane, got[lane], want)
		}
	}
}

// TestParentCVsX4MatchesSerial mirrors TestParentCVsX2MatchesSerial at
// 4-lane width.
func TestParentCVsX4MatchesSerial(t *testing.T) {
	key := testKey()
	var pairs [4]ParentPair
	for i := range pairs {
		pairs[i] = ParentPair{
			Left:  HashChunk(&key, uint64(2*i), 0, ptn(ChunkSize+i)),
			Right: HashChunk(&key, uint64(2*i+1), 0, ptn(ChunkSize+i+1)),
		}
	}

	got := ParentCVsX4(&key, compress.Parent|compress.Root, pairs)

	for lane, pr := range pairs {
		block := parentBlock(&pr)
		out := compress.Compress(&key, &block, 0, blockSize, compress.Parent|compress.Root)
		want := compress.ChainingValue(&out)
		if got[lane] != want {
			t.Errorf("lane %d: got %x want %x", lane, got[lane], want)
		}
	}
}

// TestHashChunkEmpty checks that HashChunk handles the zero-length chunk
// (the sole chunk of an empty input) without panicking, compressing exactly
// one empty block with both CHUNK_START and CHUNK_END set.
func TestHashChunkEmpty(t *testing.T) {
	key := testKey()
	got := HashChunk(&key, 0, 0, nil)

	var block [16]uint32
	out := compress.Compress(&key, &block, 0, 0, compress.ChunkStart|compress.ChunkEnd)
	want := compress.ChainingValue(&out)

	if got != want {
		t.Errorf("got %x want %x", got, want)
	}
}

// TestHashChunkBlockBoundaries checks chunk hashing at a handful of
// byte-exact block boundaries.
func TestHashChunkBlockBoundaries(t *testing.T) {
	key := testKey()
	for _, n := range []int{1, blockSize - 1, blockSize, blockSize + 1, 2 * blockSize, ChunkSize} {
		t.Run("", func(t *testing.T) {
			data := ptn(n)
			a := HashChunk(&key, 9, 0, data)
			b := HashChunk(&key, 9, 0, data)
			if a != b {
				t.Fatalf("n=%d: HashChunk not deterministic", n)
			}
		})
	}
}
