package blake3

import (
	"hash"

	"github.com/codahale/blake3/hazmat/compress"
	"github.com/codahale/blake3/hazmat/simd"
	"github.com/codahale/blake3/internal/wordpack"
)

// Hasher is an incremental BLAKE3 instance. It implements hash.Hash for the
// 32-byte digest and exposes [Hasher.XOF] for the full extendable-output
// stream. A zero Hasher is not valid; use [New], [NewKeyed], or
// [NewDeriveKey].
type Hasher struct {
	key        [8]uint32
	flags      uint32 // base mode flags, carried on every chunk and parent
	cs         chunkState
	stack      cvStack
	chunksDone uint64
}

var _ hash.Hash = (*Hasher)(nil)

// New returns a Hasher in plain-hash mode.
func New() *Hasher {
	return newHasher(compress.IV, 0)
}

// NewKeyed returns a Hasher in keyed-hash mode. The key must be exactly
// [KeySize] bytes; otherwise NewKeyed returns [ErrInvalidKeyLength].
func NewKeyed(key []byte) (*Hasher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	k := wordpack.CVFromBytes(key)
	return newHasher(k, compress.KeyedHash), nil
}

// NewDeriveKey returns a Hasher in key-derivation mode for the given
// context string. Per the two-pass construction, the context is hashed
// immediately (with key = IV, flags = DERIVE_KEY_CONTEXT) to produce a
// context key; the returned Hasher absorbs key material under that context
// key with DERIVE_KEY_MATERIAL, and its output (of any length, via
// [Hasher.XOF]) is the derived key.
//
// Conventionally the context is a hardcoded, globally unique ASCII label
// combining an application identifier, a timestamp, and a purpose.
func NewDeriveKey(context string) *Hasher {
	ctxHasher := newHasher(compress.IV, compress.DeriveKeyContext)
	ctxHasher.Write([]byte(context))
	ctxOut := ctxHasher.finalizeOutput()
	contextKey := ctxOut.chainingValueAsRoot()
	return newHasher(contextKey, compress.DeriveKeyMaterial)
}

func newHasher(key [8]uint32, flags uint32) *Hasher {
	return &Hasher{
		key:   key,
		flags: flags,
		cs:    newChunkState(&key, 0, flags),
	}
}

// Write absorbs p into the hash. It never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if h.cs.len() == chunkSize {
			h.completeChunk()
		}

		if h.cs.len() == 0 && len(p) > chunkSize {
			consumed := h.absorbFullChunks(p)
			p = p[consumed:]
			// The fast path advanced chunksDone past the index the empty
			// chunk state was created with; restart it at the new index.
			h.cs = newChunkState(&h.key, h.chunksDone, h.flags)
			continue
		}

		take := min(chunkSize-h.cs.len(), len(p))
		h.cs.update(p[:take])
		p = p[take:]
	}
	return n, nil
}

// completeChunk finalizes the current (full, non-root) chunk, pushes its
// chaining value onto the stack, and starts the next chunk.
func (h *Hasher) completeChunk() {
	out := h.cs.finalize(false)
	cv := out.chainingValue()
	h.stack.pushCV(&h.key, h.flags, cv, h.chunksDone)
	h.chunksDone++
	h.cs = newChunkState(&h.key, h.chunksDone, h.flags)
}

// absorbFullChunks is the fast path: with no chunk in progress and more
// than one chunk of input remaining, it hashes complete chunks directly out
// of p using the SIMD kernel contract, batching in groups of simd.Width
// where possible. When a burst starts on a whole-subtree boundary (the next
// 4 or 8 chunks begin at a multiple of the subtree size), the first levels
// of parent merges are batched through the parent kernels too, and the
// subtree enters the stack as a single push. It always leaves at least 1
// byte of p unconsumed, so the final chunk of the whole input is never
// finalized here — it might turn out to be the root, which only
// chunkState.finalize(true) (via [Hasher.finalizeOutput]) may decide. It
// returns the number of bytes consumed.
func (h *Hasher) absorbFullChunks(p []byte) int {
	consumed := 0
	for {
		fullChunks := (len(p) - consumed - 1) / chunkSize
		if fullChunks <= 0 {
			break
		}

		switch {
		case fullChunks >= 2*simd.Width && h.chunksDone%(2*simd.Width) == 0:
			consumed += h.absorbSubtree8(p[consumed:])

		case fullChunks >= simd.Width:
			var data [simd.Width][]byte
			for i := range data {
				off := consumed + i*chunkSize
				data[i] = p[off : off+chunkSize]
			}
			cvs := simd.ChunkCVsX4(&h.key, h.chunksDone, h.flags, data)
			if h.chunksDone%simd.Width == 0 {
				// The four chunks form one aligned subtree: batch the two
				// first-level parent merges through the 2-wide parent
				// kernel, combine, and push the 4-chunk subtree as a
				// single stack entry.
				level1 := simd.ParentCVsX2(&h.key, h.flags|compress.Parent, [2]simd.ParentPair{
					{Left: cvs[0], Right: cvs[1]},
					{Left: cvs[2], Right: cvs[3]},
				})
				cv := parentCV(&h.key, h.flags, &level1[0], &level1[1])
				h.stack.pushCV(&h.key, h.flags, cv, h.chunksDone/simd.Width)
				h.chunksDone += simd.Width
			} else {
				for _, cv := range cvs {
					h.stack.pushCV(&h.key, h.flags, cv, h.chunksDone)
					h.chunksDone++
				}
			}
			consumed += simd.Width * chunkSize

		case fullChunks >= 2:
			var data [2][]byte
			for i := range data {
				off := consumed + i*chunkSize
				data[i] = p[off : off+chunkSize]
			}
			cvs := simd.ChunkCVsX2(&h.key, h.chunksDone, h.flags, data)
			for _, cv := range cvs {
				h.stack.pushCV(&h.key, h.flags, cv, h.chunksDone)
				h.chunksDone++
			}
			consumed += 2 * chunkSize

		default:
			off := consumed
			cv := simd.HashChunk(&h.key, h.chunksDone, h.flags, p[off:off+chunkSize])
			h.stack.pushCV(&h.key, h.flags, cv, h.chunksDone)
			h.chunksDone++
			consumed += chunkSize
		}
	}
	return consumed
}

// absorbSubtree8 hashes the next 8 chunks of p, which must begin at a chunk
// index that is a multiple of 8, as one complete subtree: two 4-wide chunk
// bursts, four first-level parents through the 4-wide parent kernel, two
// second-level parents through the 2-wide kernel, and a final merge, pushed
// onto the stack as a single entry. It returns the number of bytes
// consumed.
func (h *Hasher) absorbSubtree8(p []byte) int {
	var lo, hi [simd.Width][]byte
	for i := range lo {
		lo[i] = p[i*chunkSize : (i+1)*chunkSize]
		hi[i] = p[(simd.Width+i)*chunkSize : (simd.Width+i+1)*chunkSize]
	}
	cvLo := simd.ChunkCVsX4(&h.key, h.chunksDone, h.flags, lo)
	cvHi := simd.ChunkCVsX4(&h.key, h.chunksDone+simd.Width, h.flags, hi)

	pf := h.flags | compress.Parent
	level1 := simd.ParentCVsX4(&h.key, pf, [4]simd.ParentPair{
		{Left: cvLo[0], Right: cvLo[1]},
		{Left: cvLo[2], Right: cvLo[3]},
		{Left: cvHi[0], Right: cvHi[1]},
		{Left: cvHi[2], Right: cvHi[3]},
	})
	level2 := simd.ParentCVsX2(&h.key, pf, [2]simd.ParentPair{
		{Left: level1[0], Right: level1[1]},
		{Left: level1[2], Right: level1[3]},
	})
	cv := parentCV(&h.key, h.flags, &level2[0], &level2[1])

	h.stack.pushCV(&h.key, h.flags, cv, h.chunksDone/(2*simd.Width))
	h.chunksDone += 2 * simd.Width
	return 2 * simd.Width * chunkSize
}

// finalizeOutput computes the root compression-input record without
// mutating h: the current chunk and stack are only read, never popped in
// place (cvStack.clone copies the backing slice).
func (h *Hasher) finalizeOutput() output {
	if h.chunksDone == 0 && h.stack.isEmpty() {
		// At most one chunk total: its last block is the root.
		return h.cs.finalize(true)
	}

	csOut := h.cs.finalize(false)
	cv := csOut.chainingValue()
	stack := h.stack.clone()

	for {
		left := stack.pop()
		isRoot := stack.isEmpty()

		flags := h.flags | compress.Parent
		if isRoot {
			flags |= compress.Root
		}
		block := wordpack.ParentBlock(&left, &cv)
		out := output{inputCV: h.key, block: block, counter: 0, blockLen: blockSize, flags: flags}

		if isRoot {
			return out
		}
		cv = out.chainingValue()
	}
}

// chainingValueAsRoot reads the first 8 words (32 bytes) of a root output
// and repacks them as a chaining value, used by [NewDeriveKey] to turn the
// context hash into the context key for the second pass.
func (o *output) chainingValueAsRoot() [8]uint32 {
	digest := o.rootBytes()
	return wordpack.CVFromBytes(digest[:])
}

// Sum appends the 32-byte digest to b and returns the resulting slice. It
// does not modify the receiver's state.
func (h *Hasher) Sum(b []byte) []byte {
	out := h.finalizeOutput()
	digest := out.rootBytes()
	return append(b, digest[:]...)
}

// Reset restores the Hasher to its just-constructed state, retaining its
// mode and key.
func (h *Hasher) Reset() {
	h.cs = newChunkState(&h.key, 0, h.flags)
	h.stack = cvStack{}
	h.chunksDone = 0
}

// Size returns the digest size in bytes, always 32.
func (h *Hasher) Size() int { return 32 }

// BlockSize returns the chunk size in bytes. The Write method accepts any
// amount of data, but operates most efficiently when writes are a multiple
// of BlockSize, since that is the unit [Hasher.Write]'s SIMD fast path
// batches.
func (h *Hasher) BlockSize() int { return chunkSize }

// XOF finalizes the hash and returns an extendable-output reader over the
// full BLAKE3 output stream. It does not modify the receiver's state, and
// multiple independent calls to XOF on the same (unmodified) Hasher yield
// readers that produce identical streams.
func (h *Hasher) XOF() *XOF {
	out := h.finalizeOutput()
	return out.xof()
}

// Clone returns an independent copy of the Hasher. The original and the
// clone evolve independently from this point on.
func (h *Hasher) Clone() *Hasher {
	return &Hasher{
		key:        h.key,
		flags:      h.flags,
		cs:         h.cs,
		stack:      h.stack.clone(),
		chunksDone: h.chunksDone,
	}
}
