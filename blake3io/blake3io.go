// Package blake3io provides io.Reader/io.Writer-oriented convenience
// wrappers around [github.com/codahale/blake3], for callers who have a
// stream rather than an in-memory buffer.
package blake3io

import (
	"io"

	"github.com/codahale/blake3"
)

// Digest streams r through a plain-hash [blake3.Hasher] and returns its
// 32-byte digest.
func Digest(r io.Reader) ([32]byte, error) {
	h := blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// KeyedDigest streams r through a keyed-hash [blake3.Hasher] and returns
// its 32-byte digest.
func KeyedDigest(key []byte, r io.Reader) ([32]byte, error) {
	h, err := blake3.NewKeyed(key)
	if err != nil {
		return [32]byte{}, err
	}
	if _, err := io.Copy(h, r); err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Writer incrementally accumulates a streaming hash. Write to it across any
// number of calls, then call Sum or XOF to finalize. Unlike [blake3.Hasher]
// directly, Writer exists to give a streaming hash its own io.Writer
// identity, for use with io.MultiWriter alongside another destination.
type Writer struct {
	h *blake3.Hasher
}

// NewWriter returns a Writer that accumulates into h.
func NewWriter(h *blake3.Hasher) *Writer {
	return &Writer{h: h}
}

// Write absorbs p into the underlying hasher.
func (w *Writer) Write(p []byte) (int, error) {
	return w.h.Write(p)
}

// ReadFrom absorbs r until EOF, returning the number of bytes read.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64<<10)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			_, _ = w.h.Write(buf[:n])
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Sum appends the 32-byte digest to b and returns the resulting slice. It
// does not modify the underlying hasher's state.
func (w *Writer) Sum(b []byte) []byte {
	return w.h.Sum(b)
}

// XOF finalizes the underlying hasher and returns an extendable-output
// reader over the full stream.
func (w *Writer) XOF() *blake3.XOF {
	return w.h.XOF()
}

var (
	_ io.Writer     = (*Writer)(nil)
	_ io.ReaderFrom = (*Writer)(nil)
)
