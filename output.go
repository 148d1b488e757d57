package blake3

import (
	"errors"
	"io"

	"github.com/codahale/blake3/hazmat/compress"
	"github.com/codahale/blake3/internal/wordpack"
)

// output is the compression-input record captured at finalization: it
// suffices to regenerate the root compression's 16-word output for any
// counter, which is all an [XOF] needs to produce an arbitrary-length
// stream without holding a reference back into the [Hasher] it came from.
type output struct {
	inputCV  [8]uint32
	block    [16]uint32
	counter  uint64
	blockLen uint32
	flags    uint32
}

// chainingValue returns the first 8 words of this output's compression,
// the chaining value consumed by a parent compression.
func (o *output) chainingValue() [8]uint32 {
	out := compress.Compress(&o.inputCV, &o.block, o.counter, o.blockLen, o.flags)
	return compress.ChainingValue(&out)
}

// rootBytes returns the first 32 bytes of this output's 16-word extended
// output, the canonical digest. o.flags must already include compress.Root.
func (o *output) rootBytes() [32]byte {
	out := compress.Compress(&o.inputCV, &o.block, o.counter, o.blockLen, o.flags)
	cv := compress.ChainingValue(&out)
	var digest [32]byte
	wordpack.CVToBytes(&cv, digest[:])
	return digest
}

// xof returns an extendable-output reader seeded from this root output.
func (o *output) xof() *XOF {
	return &XOF{root: *o}
}

// XOF is an extendable-output reader over a finalized BLAKE3 tree. It owns
// a copy of the root compression's inputs, so it remains valid after the
// [Hasher] it was produced from is discarded or reused, and independent
// readers from the same finalization always yield identical streams.
type XOF struct {
	root output
	pos  uint64
}

// Read squeezes up to len(p) bytes of output starting at the reader's
// current position and advances the position by that many bytes. There is
// no end to the stream: Read never returns io.EOF.
func (x *XOF) Read(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		blockIndex := x.pos / blockSize
		out := compress.Compress(&x.root.inputCV, &x.root.block, blockIndex, x.root.blockLen, x.root.flags)

		var buf [64]byte
		wordpack.BytesFromWords(&out, &buf)

		start := int(x.pos % blockSize)
		c := copy(p, buf[start:])
		p = p[c:]
		x.pos += uint64(c)
	}
	return n, nil
}

// errNegativePosition is returned by Seek when the resulting position would
// be negative.
var errNegativePosition = errors.New("blake3: XOF position cannot be negative")

// errSeekEnd is returned by Seek for io.SeekEnd: the output stream has no
// end to seek relative to.
var errSeekEnd = errors.New("blake3: XOF has no end to seek from")

// Seek repositions the reader. whence follows io.Seeker (io.SeekStart,
// io.SeekCurrent); io.SeekEnd is rejected since the stream has no end.
// Unlike a file, there is no upper bound: any non-negative position is
// valid, including positions never previously read.
func (x *XOF) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = int64(x.pos) + offset
	case io.SeekEnd:
		return int64(x.pos), errSeekEnd
	default:
		return int64(x.pos), errors.New("blake3: invalid whence")
	}

	if newPos < 0 {
		return int64(x.pos), errNegativePosition
	}

	x.pos = uint64(newPos)
	return newPos, nil
}
