// Package backing provides Store implementations for the chunked stream
// engine: a plain-file store and an in-memory one.
package backing

import (
	"io"

	"github.com/chunkfile/chunkfile/internal/chunkerr"
)

// MemStore is an in-memory, growable backing store: a byte slice with an
// independent read/write cursor, seekable like a file. It satisfies
// engine.MemoryBacked, so a Stream built over one forces every Seek to
// behave as an absolute SEEK_SET.
type MemStore struct {
	buf    []byte
	cursor int64
	closed bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// NewMemStoreFrom returns an in-memory store pre-seeded with the given
// bytes (copied, not aliased).
func NewMemStoreFrom(initial []byte) *MemStore {
	buf := make([]byte, len(initial))
	copy(buf, initial)
	return &MemStore{buf: buf}
}

func (m *MemStore) MemoryBacked() bool { return true }

func (m *MemStore) Read(p []byte) (int, error) {
	if m.closed {
		return 0, chunkerr.NewKind(chunkerr.KindClosed, "read on closed memory store")
	}
	if m.cursor >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.cursor:])
	m.cursor += int64(n)
	return n, nil
}

func (m *MemStore) Write(p []byte) (int, error) {
	if m.closed {
		return 0, chunkerr.NewKind(chunkerr.KindClosed, "write on closed memory store")
	}
	end := m.cursor + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.cursor:end], p)
	m.cursor = end
	return n, nil
}

func (m *MemStore) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, chunkerr.NewKind(chunkerr.KindClosed, "seek on closed memory store")
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.cursor + offset
	case io.SeekEnd:
		target = int64(len(m.buf)) + offset
	default:
		return 0, chunkerr.NewKind(chunkerr.KindSeek, "invalid whence")
	}
	if target < 0 {
		return 0, chunkerr.NewKind(chunkerr.KindSeek, "negative absolute position")
	}
	m.cursor = target
	return target, nil
}

func (m *MemStore) Close() error {
	m.closed = true
	return nil
}

// Bytes returns the store's current content. It does not copy.
func (m *MemStore) Bytes() []byte { return m.buf }
