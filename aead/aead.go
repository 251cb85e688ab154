// Package aead declares the authenticated-encryption primitive the chunked
// storage engine is built on top of. The engine only ever talks to this
// interface: two opaque operations, encrypt and decrypt, each working on
// one block at a time, plus Expansion, the number of bytes Encrypt adds
// to a block. Key generation is the package-level GenerateKey.
//
// This package also ships a concrete implementation, Fernet, built on the
// standard library's AES-GCM, so the module is runnable end to end. A
// caller who wants a different AEAD only has to satisfy Primitive.
package aead

import "github.com/chunkfile/chunkfile/internal/chunkerr"

// KeySize is the size, in bytes, of the key material every Primitive
// implementation in this module consumes.
const KeySize = 32

// Key is 32 opaque bytes used to drive a Primitive.
type Key [KeySize]byte

// Primitive is the external AEAD collaborator. Implementations must
// produce their own nonce on every call to Encrypt, and must fail
// authentication (returning an error satisfying errors.Is(err,
// ErrAuth)) on tampering or a wrong key.
type Primitive interface {
	// Encrypt encrypts a plaintext block, returning a ciphertext block
	// whose length is a deterministic function of len(plain) alone.
	Encrypt(plain []byte) (cipher []byte, err error)

	// Decrypt decrypts and authenticates a ciphertext block produced by
	// Encrypt under the same key.
	Decrypt(cipher []byte) (plain []byte, err error)

	// Expansion returns C - P for a plaintext of length plainLen, i.e.
	// how many bytes Encrypt adds to a block of that size. Implementations
	// typically compute this once per distinct plainLen by round-tripping
	// a zero block, and callers (the chunk codec) are expected to cache
	// the result themselves rather than call this on every chunk.
	Expansion(plainLen int) (int, error)
}

// ErrAuth is the sentinel wrapped into every authentication failure
// returned by a Primitive's Decrypt. Check with errors.Is.
var ErrAuth = chunkerr.NewKind(chunkerr.KindAuth, "authentication failed")

// ErrKey is the sentinel wrapped into every error caused by malformed key
// material passed to a Primitive constructor.
var ErrKey = chunkerr.NewKind(chunkerr.KindKey, "invalid key material")

// GenerateKey yields fresh, random key material suitable for any Primitive
// in this package.
func GenerateKey() (Key, error) {
	return generateKey()
}
