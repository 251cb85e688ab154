// Package engine implements the seekable, chunked, authenticated stream:
// translating a cleartext byte-addressable read/write/seek surface onto a
// backing store that only ever sees fixed-size, independently encrypted
// chunks.
package engine

import "io"

// Store is the minimal contract the engine needs from whatever backs a
// chunked file: random-access bytes, the shape an *os.File or an
// in-memory buffer both already have.
type Store interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// MemoryBacked is implemented by Store values that live entirely in
// memory (see backing.MemStore). The stream engine detects it so that
// seeking such a store always behaves as an absolute SEEK_SET, regardless
// of the whence a caller passed - matching how an in-memory buffer has no
// real notion of "current position relative to a file cursor on disk".
type MemoryBacked interface {
	MemoryBacked() bool
}

func isMemoryBacked(s Store) bool {
	mb, ok := s.(MemoryBacked)
	return ok && mb.MemoryBacked()
}
