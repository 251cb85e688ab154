package engine

import (
	"io"

	"github.com/chunkfile/chunkfile/aead"
	"github.com/chunkfile/chunkfile/internal/chunkerr"
)

// codec translates between chunk index and the ciphertext region of the
// backing store, and between a chunk's plaintext and its padded,
// encrypted on-disk form. It knows nothing about cursors; that's the
// stream's job.
type codec struct {
	store      Store
	prim       aead.Primitive
	plainSize  int64 // P
	cipherSize int64 // C = P + E(P), computed once and cached
}

func newCodec(store Store, prim aead.Primitive, plainSize int64) (*codec, error) {
	if plainSize <= 0 {
		return nil, chunkerr.NewKind(chunkerr.KindConfig, "plain chunk size must be positive")
	}
	e, err := prim.Expansion(int(plainSize))
	if err != nil {
		return nil, chunkerr.Wrap(err, "calibrate chunk expansion")
	}
	return &codec{store: store, prim: prim, plainSize: plainSize, cipherSize: plainSize + int64(e)}, nil
}

func (c *codec) offset(i uint64) int64 {
	return headerSize + int64(i)*c.cipherSize
}

// readChunk returns the plaintext of chunk i, already stripped of tail
// padding if i is the current last chunk. A chunk that was never written
// reads back as an empty slice, not an error: only a genuine short read
// (0 bytes) is treated that way; a partial short read or an
// authentication failure is surfaced to the caller instead of masked.
func (c *codec) readChunk(i uint64, h *header) ([]byte, error) {
	if _, err := c.store.Seek(c.offset(i), io.SeekStart); err != nil {
		return nil, chunkerr.WrapKind(err, chunkerr.KindIO, "seek to chunk")
	}
	buf := make([]byte, c.cipherSize)
	n, err := io.ReadFull(c.store, buf)
	switch {
	case err == io.EOF && n == 0:
		return []byte{}, nil
	case err == io.ErrUnexpectedEOF || (err == nil && int64(n) < c.cipherSize):
		return nil, chunkerr.NewKind(chunkerr.KindCorruption, "chunk short read")
	case err != nil && err != io.EOF:
		return nil, chunkerr.WrapKind(err, chunkerr.KindIO, "read chunk")
	}
	plain, err := c.prim.Decrypt(buf)
	if err != nil {
		return nil, err
	}
	if h.hasData && i == h.lastChunkIndex && h.lastChunkPadding > 0 && int64(h.lastChunkPadding) <= int64(len(plain)) {
		plain = plain[:int64(len(plain))-int64(h.lastChunkPadding)]
	}
	return plain, nil
}

// writeChunk pads plain to P, encrypts it, and writes it at chunk i. If i
// is at or past the current last chunk, the header is advanced and
// flushed to reflect the new tail.
func (c *codec) writeChunk(i uint64, plain []byte, h *header) error {
	padded := make([]byte, c.plainSize)
	n := copy(padded, plain)
	padding := c.plainSize - int64(n)
	cipherBytes, err := c.prim.Encrypt(padded)
	if err != nil {
		return err
	}
	if _, err := c.store.Seek(c.offset(i), io.SeekStart); err != nil {
		return chunkerr.WrapKind(err, chunkerr.KindIO, "seek to chunk")
	}
	if _, err := c.store.Write(cipherBytes); err != nil {
		return chunkerr.WrapKind(err, chunkerr.KindIO, "write chunk")
	}
	if !h.hasData || i >= h.lastChunkIndex {
		h.lastChunkIndex = i
		h.lastChunkPadding = uint64(padding)
		h.hasData = true
		if err := writeHeader(c.store, *h); err != nil {
			return err
		}
	}
	return nil
}
