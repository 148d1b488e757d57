package blake3

import (
	"github.com/codahale/blake3/hazmat/compress"
	"github.com/codahale/blake3/internal/wordpack"
)

// maxStackDepth bounds the CV stack: 2^64 bytes is at most 2^54 chunks, so
// the stack (whose depth equals the popcount of completed chunks) never
// holds more than 54 entries.
const maxStackDepth = 54

// cvStack holds the chaining values of completed subtrees whose sizes form
// the binary decomposition of the number of chunks absorbed so far: stack
// depth equals the popcount of that count, and each entry is the root of a
// subtree of 2^k chunks for one set bit k of it, the largest subtree at the
// bottom and the smallest on top.
type cvStack struct {
	entries [][8]uint32
}

func (s *cvStack) isEmpty() bool {
	return len(s.entries) == 0
}

func (s *cvStack) push(cv [8]uint32) {
	s.entries = append(s.entries, cv)
}

func (s *cvStack) pop() [8]uint32 {
	n := len(s.entries) - 1
	cv := s.entries[n]
	s.entries = s.entries[:n]
	return cv
}

func (s *cvStack) clone() cvStack {
	return cvStack{entries: append([][8]uint32(nil), s.entries...)}
}

// pushCV absorbs the chaining value of a completed subtree. index is the
// subtree's 0-based position among same-size subtrees: the chunk index for
// a single chunk, or the chunk index shifted right by the subtree's level
// for the larger aligned subtrees the fast path assembles. Before pushing,
// it merges with the stack top while index's current low bit is set,
// shifting right after each merge — the number of merges performed equals
// the count of trailing zeros of index+1.
func (s *cvStack) pushCV(key *[8]uint32, flags uint32, cv [8]uint32, index uint64) {
	for index&1 == 1 {
		left := s.pop()
		cv = parentCV(key, flags, &left, &cv)
		index >>= 1
	}
	if len(s.entries) >= maxStackDepth {
		panic("blake3: input too large (chunk count overflow)")
	}
	s.push(cv)
}

// parentCV computes the chaining value of a parent compression over the
// given left and right child chaining values. flags must not already
// include compress.Parent or compress.Root; this always adds Parent and
// never Root (finalize is responsible for setting Root on the final merge).
func parentCV(key *[8]uint32, flags uint32, left, right *[8]uint32) [8]uint32 {
	block := wordpack.ParentBlock(left, right)
	out := compress.Compress(key, &block, 0, blockSize, flags|compress.Parent)
	return compress.ChainingValue(&out)
}
