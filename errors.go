package blake3

import "errors"

// KeySize is the required length, in bytes, of a [NewKeyed] key.
const KeySize = 32

// ErrInvalidKeyLength is returned by [NewKeyed] when the key is not exactly
// [KeySize] bytes.
var ErrInvalidKeyLength = errors.New("blake3: key must be exactly 32 bytes")
