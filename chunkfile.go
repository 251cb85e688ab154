// Package chunkfile implements a seekable, chunked, authenticated-
// encryption file format: a cleartext read/write/seek stream backed by
// independently encrypted, independently authenticated fixed-size
// ciphertext chunks. Random-access reads and writes only ever touch the
// chunk(s) they overlap, so opening and modifying a file does not
// require decrypting it in full.
package chunkfile

import (
	"io"

	"github.com/chunkfile/chunkfile/aead"
	"github.com/chunkfile/chunkfile/internal/chunkerr"
	"github.com/chunkfile/chunkfile/internal/engine"
)

// DefaultChunkSize is used when a caller doesn't care to choose one: a
// page-sized plaintext block.
const DefaultChunkSize = 4096

// Store is the random-access backing a File reads and writes its
// ciphertext chunks against. *os.File and *backing.MemStore both satisfy
// it; so does anything else shaped like one.
type Store = engine.Store

// Key is the symmetric key material a File is opened or created with.
type Key = aead.Key

// Error is the chained error type every failure returned by this package
// is (or wraps). Use errors.As to recover one and switch on its Kind.
type Error = chunkerr.Error

// GenerateKey returns fresh, random key material.
func GenerateKey() (Key, error) {
	return aead.GenerateKey()
}

// File is a seekable, chunked, authenticated-encryption stream. It
// satisfies io.Reader, io.Writer, io.Seeker and io.Closer.
type File struct {
	stream *engine.Stream
}

// Open builds a File over store, using key to derive the chunk cipher and
// plainChunkSize as P, the plaintext chunk size. plainChunkSize must
// match whatever the file, if it already has data, was originally written
// with: the header records tail bookkeeping, not the chunk size itself,
// so opening an existing file with the wrong P will not be caught by a
// header check and will simply decrypt the wrong number of ciphertext
// bytes per chunk, surfacing as CorruptionError or AuthError.
func Open(store Store, key Key, plainChunkSize int64) (*File, error) {
	prim, err := aead.NewFernet(key)
	if err != nil {
		return nil, err
	}
	s, err := engine.Open(store, prim, plainChunkSize)
	if err != nil {
		return nil, err
	}
	return &File{stream: s}, nil
}

// Create opens store as a fresh File with freshly generated key material,
// using DefaultChunkSize. It returns the generated key alongside the
// File: without it the caller has no way to read the file back.
func Create(store Store) (*File, Key, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, Key{}, err
	}
	f, err := Open(store, key, DefaultChunkSize)
	return f, key, err
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) { return f.stream.Read(p) }

// ReadToEnd reads every remaining byte from the cursor to the logical end
// of the file in one call, the equivalent of a negative-size read.
func (f *File) ReadToEnd() ([]byte, error) { return f.stream.ReadToEnd() }

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) { return f.stream.Write(p) }

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.stream.Seek(offset, whence)
}

// Close implements io.Closer, flushing any unwritten chunk first.
func (f *File) Close() error { return f.stream.Close() }

// Size returns the file's current logical (cleartext) length.
func (f *File) Size() int64 { return f.stream.Size() }

// Writeable reports whether the backing store accepted writes when the
// File was opened.
func (f *File) Writeable() bool { return f.stream.Writeable() }

var _ io.ReadWriteSeeker = (*File)(nil)

// IsAuthFailure reports whether err is (or wraps) an authentication
// failure: a chunk that failed to decrypt under the given key, whether
// from a wrong key or from tampering.
func IsAuthFailure(err error) bool {
	return chunkerr.KindOf(err) == chunkerr.KindAuth
}

// IsCorruption reports whether err is (or wraps) a corrupted backing
// store: a header or chunk that was present but the wrong size.
func IsCorruption(err error) bool {
	return chunkerr.KindOf(err) == chunkerr.KindCorruption
}
