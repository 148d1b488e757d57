// Package blake3 implements the BLAKE3 cryptographic hash function: a
// keyed, parallelizable, extendable-output hash built over a binary Merkle
// tree of 1024-byte chunks, each reduced to a chaining value by the
// compression primitive in [github.com/codahale/blake3/hazmat/compress].
//
// Three constructors select the three BLAKE3 modes: [New] for plain
// hashing, [NewKeyed] for a 32-byte-keyed MAC-like hash, and [NewDeriveKey]
// for context-separated key derivation. All three return a [Hasher] that
// implements hash.Hash plus an [Hasher.XOF] method for extendable output.
package blake3
