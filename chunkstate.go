package blake3

import (
	"github.com/codahale/blake3/hazmat/compress"
	"github.com/codahale/blake3/hazmat/simd"
	"github.com/codahale/blake3/internal/wordpack"
)

// chunkSize is the number of bytes in a full, non-final chunk.
const chunkSize = simd.ChunkSize

const blockSize = 64

// chunkState is the incremental per-chunk accumulator described for the
// tree hasher's current leaf: a running chaining value updated one full
// block at a time, plus a partial-block buffer of 0 to 64 bytes.
type chunkState struct {
	cv               [8]uint32
	buf              [blockSize]byte
	bufLen           int
	blocksCompressed int
	chunkIndex       uint64
	flags            uint32 // base mode flags, without CHUNK_START/CHUNK_END/ROOT
}

func newChunkState(key *[8]uint32, chunkIndex uint64, flags uint32) chunkState {
	return chunkState{cv: *key, chunkIndex: chunkIndex, flags: flags}
}

// len returns the number of bytes absorbed by this chunk so far.
func (cs *chunkState) len() int {
	return cs.blocksCompressed*blockSize + cs.bufLen
}

func (cs *chunkState) startFlag() uint32 {
	if cs.blocksCompressed == 0 {
		return compress.ChunkStart
	}
	return 0
}

// update absorbs input into the chunk. It never eagerly compresses the
// final block: the buffer compresses only when it is already full and more
// input remains to be written.
func (cs *chunkState) update(input []byte) {
	for len(input) > 0 {
		if cs.bufLen == blockSize {
			block := wordpack.BlockFromBytes(cs.buf[:])
			flags := cs.flags | cs.startFlag()
			out := compress.Compress(&cs.cv, &block, cs.chunkIndex, blockSize, flags)
			cs.cv = compress.ChainingValue(&out)
			cs.blocksCompressed++
			cs.bufLen = 0
		}

		take := min(blockSize-cs.bufLen, len(input))
		copy(cs.buf[cs.bufLen:], input[:take])
		cs.bufLen += take
		input = input[take:]
	}
}

// finalize compresses the buffered bytes as the chunk's last block,
// returning the compression-input record rather than just the chaining
// value so that a root chunk's output can later seed an [XOF].
func (cs *chunkState) finalize(isRoot bool) output {
	flags := cs.flags | cs.startFlag() | compress.ChunkEnd
	if isRoot {
		flags |= compress.Root
	}
	block := wordpack.BlockFromBytes(cs.buf[:cs.bufLen])
	return output{
		inputCV:  cs.cv,
		block:    block,
		counter:  cs.chunkIndex,
		blockLen: uint32(cs.bufLen),
		flags:    flags,
	}
}
