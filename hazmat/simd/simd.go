// Package simd implements the BLAKE3 SIMD kernel contract: given N
// independent chunks (or N independent parent-node pairs) that share a key
// and flags but differ in input and counter, compute their chaining values
// in parallel.
//
// Real deployments satisfy this contract with vectorized assembly that
// interleaves N lanes of the compression function's state across SIMD
// registers. Platform-specific kernels are out of scope here: this package
// is the portable fallback the design is built around, so the full test
// suite runs on any architecture. The interleaved-lane loop structure below
// is what an assembly kernel would vectorize; the arithmetic itself still
// runs one lane at a time.
package simd

import (
	"github.com/codahale/blake3/hazmat/compress"
	"github.com/codahale/blake3/internal/wordpack"
)

// Width is the number of chunks or parents this package's widest batch
// kernel processes per call. Real SIMD widths are typically 4, 8, or 16;
// this portable build fixes 4, the degree the batch loops below unroll to.
const Width = 4

// ChunkSize is the number of bytes in a full, non-final chunk.
const ChunkSize = 1024

const blockSize = 64
const blocksPerChunk = ChunkSize / blockSize

// HashChunk computes the chaining value of a single chunk of 0 to ChunkSize
// bytes, driving the compression function across the chunk's blocks in
// order: CHUNK_START on the first block, CHUNK_END on the last.
func HashChunk(key *[8]uint32, counter uint64, flags uint32, data []byte) [8]uint32 {
	cv := *key
	blocks := splitBlocks(data)

	for i, block := range blocks {
		f := flags
		if i == 0 {
			f |= compress.ChunkStart
		}
		if i == len(blocks)-1 {
			f |= compress.ChunkEnd
		}
		blen := blockSize
		if i == len(blocks)-1 {
			blen = lastBlockLen(len(data))
		}
		out := compress.Compress(&cv, &block, counter, uint32(blen), f)
		cv = compress.ChainingValue(&out)
	}

	return cv
}

// ChunkCVsX2 computes the chaining values of two independent, equal-length
// chunks in lockstep, one block at a time, mirroring the interleaved-lane
// structure a 2-wide SIMD kernel would use. Both chunks must be exactly
// ChunkSize bytes: this is the full-chunk fast path, never the final
// (possibly short) chunk of an input.
func ChunkCVsX2(key *[8]uint32, baseCounter uint64, flags uint32, data [2][]byte) [2][8]uint32 {
	var cv [2][8]uint32
	cv[0], cv[1] = *key, *key

	for blk := 0; blk < blocksPerChunk; blk++ {
		f := flags
		if blk == 0 {
			f |= compress.ChunkStart
		}
		if blk == blocksPerChunk-1 {
			f |= compress.ChunkEnd
		}
		off := blk * blockSize
		for lane := range data {
			block := wordsFromBlock(data[lane][off : off+blockSize])
			out := compress.Compress(&cv[lane], &block, baseCounter+uint64(lane), blockSize, f)
			cv[lane] = compress.ChainingValue(&out)
		}
	}

	return cv
}

// ChunkCVsX4 computes the chaining values of four independent, full
// (ChunkSize-byte) chunks in lockstep, mirroring a 4-wide SIMD kernel.
func ChunkCVsX4(key *[8]uint32, baseCounter uint64, flags uint32, data [4][]byte) [4][8]uint32 {
	var cv [4][8]uint32
	for lane := range cv {
		cv[lane] = *key
	}

	for blk := 0; blk < blocksPerChunk; blk++ {
		f := flags
		if blk == 0 {
			f |= compress.ChunkStart
		}
		if blk == blocksPerChunk-1 {
			f |= compress.ChunkEnd
		}
		off := blk * blockSize
		for lane := range data {
			block := wordsFromBlock(data[lane][off : off+blockSize])
			out := compress.Compress(&cv[lane], &block, baseCounter+uint64(lane), blockSize, f)
			cv[lane] = compress.ChainingValue(&out)
		}
	}

	return cv
}

// ParentPair is the input to a single lane of a batched parent compression:
// the left and right child chaining values to concatenate into the 64-byte
// parent block.
type ParentPair struct {
	Left, Right [8]uint32
}

// ParentCVsX2 computes two independent parent-node chaining values in
// lockstep. Both share key and flags (which must already include
// compress.Parent); counter is always 0 for parent compressions.
func ParentCVsX2(key *[8]uint32, flags uint32, pairs [2]ParentPair) [2][8]uint32 {
	var cv [2][8]uint32
	for lane, pr := range pairs {
		block := parentBlock(&pr)
		out := compress.Compress(key, &block, 0, blockSize, flags)
		cv[lane] = compress.ChainingValue(&out)
	}
	return cv
}

// ParentCVsX4 computes four independent parent-node chaining values.
func ParentCVsX4(key *[8]uint32, flags uint32, pairs [4]ParentPair) [4][8]uint32 {
	var cv [4][8]uint32
	for lane, pr := range pairs {
		block := parentBlock(&pr)
		out := compress.Compress(key, &block, 0, blockSize, flags)
		cv[lane] = compress.ChainingValue(&out)
	}
	return cv
}

func parentBlock(pr *ParentPair) [16]uint32 {
	return wordpack.ParentBlock(&pr.Left, &pr.Right)
}

// splitBlocks divides data into 64-byte blocks, the last of which may be
// short (or, for zero-length data, the single empty block of the empty
// chunk).
func splitBlocks(data []byte) [][16]uint32 {
	n := max(1, (len(data)+blockSize-1)/blockSize)
	blocks := make([][16]uint32, n)
	for i := range blocks {
		off := i * blockSize
		end := min(off+blockSize, len(data))
		block := wordpack.BlockFromBytes(data[off:end])
		blocks[i] = block
	}
	return blocks
}

func lastBlockLen(dataLen int) int {
	if dataLen == 0 {
		return 0
	}
	n := dataLen % blockSize
	if n == 0 {
		return blockSize
	}
	return n
}

func wordsFromBlock(block []byte) [16]uint32 {
	return wordpack.BlockFromBytes(block)
}
