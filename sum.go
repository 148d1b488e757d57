package blake3

import (
	"crypto/subtle"

	"golang.org/x/sync/errgroup"

	"github.com/codahale/blake3/hazmat/compress"
	"github.com/codahale/blake3/internal/wordpack"
)

// Equal compares two digests in constant time. It returns false if the
// lengths differ.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Sum256 computes the 32-byte BLAKE3 digest of data in plain-hash mode.
func Sum256(data []byte) [32]byte {
	h := New()
	_, _ = h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SumKeyed computes the 32-byte BLAKE3 digest of data in keyed-hash mode.
func SumKeyed(key *[KeySize]byte, data []byte) [32]byte {
	h, err := NewKeyed(key[:])
	if err != nil {
		// key is a fixed-size array: NewKeyed can only fail on length.
		panic(err)
	}
	_, _ = h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// DeriveKey derives len(out) bytes of key material from context and
// material, writing them into out.
func DeriveKey(context string, material []byte, out []byte) {
	h := NewDeriveKey(context)
	_, _ = h.Write(material)
	xof := h.XOF()
	_, _ = xof.Read(out)
}

// minParallelChunks is the smallest subtree size, in chunks, that
// SumParallel will split across goroutines rather than hash inline. Below
// this, goroutine dispatch overhead dwarfs the work being parallelized.
const minParallelChunks = 16 // 16 KiB

// SumParallel computes the 32-byte BLAKE3 digest of data in plain-hash
// mode, the same as Sum256, but fans large inputs out across goroutines
// along subtree boundaries. It
// always produces the same digest as Sum256 on the same input: the split
// points are exactly the ones a streaming hash of the same input would
// have produced internally.
func SumParallel(data []byte) [32]byte {
	key := compress.IV
	out := hashSubtreeParallel(&key, 0, 0, data, true)
	return out.rootBytes()
}

// hashSubtreeParallel hashes data (a contiguous run of chunks starting at
// chunkCounterBase) and returns its compression-input record. isRoot is
// true only for the single top-level call on the entire input.
//
// Split policy: the left subtree is the largest power of two (in chunks)
// strictly less than the range's chunk count. This single rule reproduces
// the "split a power-of-two range exactly in half" case too: if the range
// is N chunks and N is itself a power of two, the largest power of two
// strictly less than N is N/2, so both halves end up equal without a
// separate branch.
func hashSubtreeParallel(key *[8]uint32, flags uint32, chunkCounterBase uint64, data []byte, isRoot bool) output {
	chunkCount := max(1, (len(data)+chunkSize-1)/chunkSize)

	if chunkCount == 1 {
		cs := newChunkState(key, chunkCounterBase, flags)
		cs.update(data)
		return cs.finalize(isRoot)
	}

	leftChunks := largestPowerOfTwoLessThan(chunkCount)
	splitAt := leftChunks * chunkSize
	leftData, rightData := data[:splitAt], data[splitAt:]

	var leftOut, rightOut output
	if chunkCount >= minParallelChunks {
		var g errgroup.Group
		g.Go(func() error {
			leftOut = hashSubtreeParallel(key, flags, chunkCounterBase, leftData, false)
			return nil
		})
		g.Go(func() error {
			rightOut = hashSubtreeParallel(key, flags, chunkCounterBase+uint64(leftChunks), rightData, false)
			return nil
		})
		_ = g.Wait()
	} else {
		leftOut = hashSubtreeParallel(key, flags, chunkCounterBase, leftData, false)
		rightOut = hashSubtreeParallel(key, flags, chunkCounterBase+uint64(leftChunks), rightData, false)
	}

	leftCV := leftOut.chainingValue()
	rightCV := rightOut.chainingValue()
	block := wordpack.ParentBlock(&leftCV, &rightCV)

	f := flags | compress.Parent
	if isRoot {
		f |= compress.Root
	}
	return output{inputCV: *key, block: block, counter: 0, blockLen: blockSize, flags: f}
}

// largestPowerOfTwoLessThan returns the largest power of two strictly less
// than n, for n >= 2.
func largestPowerOfTwoLessThan(n int) int {
	p := 1
	for p*2 < n {
		p *= 2
	}
	return p
}
