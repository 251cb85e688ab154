package engine

import (
	"io"

	"github.com/chunkfile/chunkfile/aead"
	"github.com/chunkfile/chunkfile/internal/chunkerr"
)

// cacheSlot is the engine's single resident chunk: the one and only
// plaintext chunk held in memory at a time. index/loaded track which
// chunk it mirrors; dirty tracks whether it needs to be written back
// before the engine can move on to any other chunk.
type cacheSlot struct {
	index  uint64
	bytes  []byte
	dirty  bool
	loaded bool
}

// Stream is the chunked, seekable, authenticated read/write/seek engine.
// It holds exactly one plaintext chunk in memory (cacheSlot) and a cursor
// (chunkIndex, intraOffset) that canonicalize keeps normalized to
// 0 <= intraOffset < P. Every place that needs to move the resident
// chunk goes through setChunkIndex, so cache coherence (flush the old
// chunk, load the new one) only has to be gotten right once.
type Stream struct {
	store     Store
	codec     *codec
	header    header
	cache     cacheSlot
	writeable bool
	memBacked bool
	closed    bool

	chunkIndex  uint64
	intraOffset int64
}

// Open builds a Stream over store using prim for chunk encryption, with a
// plaintext chunk size of plainChunkSize bytes. It reads the header if
// present, then probes the store for writeability by writing that same
// header straight back, unconditionally, at construction rather than
// deferring the check to the first write. Writing the header's own bytes
// back (rather than a zeroed placeholder) means the probe can't clobber
// an existing file's real header on disk. A read-only store's failed
// probe just clears the writeable flag; it does not fail Open.
func Open(store Store, prim aead.Primitive, plainChunkSize int64) (*Stream, error) {
	h, err := readHeader(store)
	if err != nil {
		return nil, err
	}
	writeable := true
	if werr := writeHeader(store, h); werr != nil {
		writeable = false
	}
	c, err := newCodec(store, prim, plainChunkSize)
	if err != nil {
		return nil, err
	}
	s := &Stream{
		store:     store,
		codec:     c,
		header:    h,
		writeable: writeable,
		memBacked: isMemoryBacked(store),
	}
	return s, nil
}

// ensureLoaded makes sure the resident chunk actually mirrors the current
// chunkIndex before Read or Write touches it. Chunk 0 is not loaded
// eagerly at Open, so an authentication failure on the very first chunk
// surfaces when something actually tries to read it, not at Open (e.g. a
// caller who only wants to inspect Size is unaffected). An absolute Seek
// does load chunks: it re-grounds on chunk 0 and loads the target chunk.
func (s *Stream) ensureLoaded() error {
	if s.cache.loaded && s.cache.index == s.chunkIndex {
		return nil
	}
	return s.setChunkIndex(s.chunkIndex)
}

// Close flushes a dirty resident chunk, if any, and closes the backing
// store. A failed flush is swallowed; only an error from closing the
// store is returned.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cache.loaded && s.cache.dirty {
		_ = s.flushCache()
	}
	if err := s.store.Close(); err != nil {
		return chunkerr.WrapKind(err, chunkerr.KindIO, "close backing store")
	}
	return nil
}

func (s *Stream) flushCache() error {
	if err := s.codec.writeChunk(s.cache.index, s.cache.bytes, &s.header); err != nil {
		return err
	}
	s.cache.dirty = false
	return nil
}

func (s *Stream) loadCache(i uint64) error {
	plain, err := s.codec.readChunk(i, &s.header)
	if err != nil {
		return err
	}
	s.cache = cacheSlot{index: i, bytes: plain, dirty: false, loaded: true}
	return nil
}

// setChunkIndex is the one place the resident chunk ever changes: flush
// the old one if dirty, then load the new one. Every cursor movement
// that crosses a chunk boundary - Read, Write, Seek, canonicalize -
// routes through this so the flush-then-load pairing can't be missed in
// one call site and remembered in another.
func (s *Stream) setChunkIndex(i uint64) error {
	if s.cache.loaded && s.cache.dirty {
		if err := s.flushCache(); err != nil {
			return err
		}
	}
	s.chunkIndex = i
	return s.loadCache(i)
}

// canonicalize normalizes intraOffset back into [0, P), rolling the
// difference into chunkIndex via setChunkIndex. A resulting negative
// chunk index is a seek before the start of the file.
func (s *Stream) canonicalize() error {
	P := s.codec.plainSize
	q := floorDiv(s.intraOffset, P)
	r := floorMod(s.intraOffset, P)
	if q != 0 {
		next := int64(s.chunkIndex) + q
		if next < 0 {
			return chunkerr.NewKind(chunkerr.KindSeek, "seek before start of file")
		}
		if err := s.setChunkIndex(uint64(next)); err != nil {
			return err
		}
	}
	s.intraOffset = r
	return nil
}

// pos is the current absolute cleartext cursor position.
func (s *Stream) pos() int64 {
	return int64(s.chunkIndex)*s.codec.plainSize + s.intraOffset
}

// Size returns the logical cleartext length of the stream, accounting for
// a dirty resident chunk that extends past the last flushed tail even if
// it hasn't been written back yet - so Size is always accurate without
// requiring a flush first.
func (s *Stream) Size() int64 {
	idx, pad, has := s.header.lastChunkIndex, s.header.lastChunkPadding, s.header.hasData
	if s.cache.loaded && s.cache.dirty && (!has || s.cache.index >= idx) {
		idx = s.cache.index
		pad = uint64(s.codec.plainSize - int64(len(s.cache.bytes)))
		has = true
	}
	if !has {
		return 0
	}
	return int64(idx+1)*s.codec.plainSize - int64(pad)
}

// Pos returns the current absolute cursor position.
func (s *Stream) Pos() int64 { return s.pos() }

func (s *Stream) growCache(n int) {
	if len(s.cache.bytes) < n {
		grown := make([]byte, n)
		copy(grown, s.cache.bytes)
		s.cache.bytes = grown
	}
}

// snapToEnd pulls the cursor back to Size() when it has drifted past it -
// the case of a seek past EOF followed by a read, which must not observe
// or extend past the real tail.
func (s *Stream) snapToEnd() error {
	sz := s.Size()
	if s.pos() <= sz {
		return nil
	}
	return s.setAbsolute(sz)
}

// setAbsolute repositions the cursor to an absolute, non-negative
// position, always re-grounding against chunk 0 first so the flush of
// whatever chunk was previously resident happens regardless of which
// direction the seek moves.
func (s *Stream) setAbsolute(target int64) error {
	if err := s.setChunkIndex(0); err != nil {
		return err
	}
	s.intraOffset = target
	return s.canonicalize()
}

// Seek implements io.Seeker. A memory-backed store forces whence to
// SeekStart regardless of what was requested. A resulting negative
// position, or an unrecognized whence, rolls the cursor back to its
// pre-call value and fails with a Seek-kind error.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, chunkerr.NewKind(chunkerr.KindClosed, "seek on closed stream")
	}
	if s.memBacked {
		whence = io.SeekStart
	}
	savedChunk, savedIntra := s.chunkIndex, s.intraOffset
	var err error
	switch whence {
	case io.SeekStart:
		err = s.seekAbsolute(offset)
	case io.SeekCurrent:
		err = s.seekRelative(offset)
	case io.SeekEnd:
		err = s.seekAbsolute(s.Size() + offset)
	default:
		err = chunkerr.NewKind(chunkerr.KindSeek, "invalid whence")
	}
	if err != nil {
		s.chunkIndex, s.intraOffset = savedChunk, savedIntra
		return 0, err
	}
	return s.pos(), nil
}

func (s *Stream) seekAbsolute(target int64) error {
	if target < 0 {
		return chunkerr.NewKind(chunkerr.KindSeek, "negative absolute position")
	}
	return s.setAbsolute(target)
}

func (s *Stream) seekRelative(delta int64) error {
	target := s.pos() + delta
	if target < 0 {
		return chunkerr.NewKind(chunkerr.KindSeek, "negative absolute position")
	}
	s.intraOffset += delta
	return s.canonicalize()
}

// Read implements io.Reader against the chunked cleartext stream. It
// never crosses more than one chunk boundary per resident chunk consumed,
// and stops - returning io.EOF once nothing has been copied - exactly at
// the logical end of file, snapping the cursor there if it had drifted
// past it (e.g. after a Seek beyond EOF).
func (s *Stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, chunkerr.NewKind(chunkerr.KindClosed, "read on closed stream")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if err := s.snapToEnd(); err != nil {
		return 0, err
	}
	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}
	out := 0
	for out < len(p) {
		var avail []byte
		if s.intraOffset < int64(len(s.cache.bytes)) {
			avail = s.cache.bytes[s.intraOffset:]
		}
		if len(avail) == 0 {
			break
		}
		n := copy(p[out:], avail)
		out += n
		s.intraOffset += int64(n)
		if err := s.canonicalize(); err != nil {
			return out, err
		}
	}
	if out == 0 {
		return 0, io.EOF
	}
	return out, nil
}

// ReadToEnd reads every remaining byte from the cursor to the logical end
// of the stream. It flushes the resident chunk first so that, even
// though Size is always self-consistent, the on-disk tail bookkeeping
// reflects the read it is about to serve - useful to callers that inspect
// the backing store directly afterward.
func (s *Stream) ReadToEnd() ([]byte, error) {
	if s.closed {
		return nil, chunkerr.NewKind(chunkerr.KindClosed, "read on closed stream")
	}
	if err := s.refreshTail(); err != nil {
		return nil, err
	}
	remaining := s.Size() - s.pos()
	if remaining <= 0 {
		if err := s.snapToEnd(); err != nil {
			return nil, err
		}
		return []byte{}, nil
	}
	buf := make([]byte, remaining)
	n, err := s.Read(buf)
	if err != nil && err != io.EOF {
		return buf[:n], err
	}
	return buf[:n], nil
}

// refreshTail commits a dirty resident chunk to disk without moving the
// cursor, so Size and the on-disk header agree.
func (s *Stream) refreshTail() error {
	if s.cache.loaded && s.cache.dirty {
		return s.flushCache()
	}
	return nil
}

// Write implements io.Writer against the chunked cleartext stream. A
// write that lands entirely within the resident chunk is a splice; a
// write that reaches or exceeds a full chunk's worth of remaining data,
// starting from the top of a chunk, replaces that chunk's plaintext
// outright. That chunk's old content is still loaded (decrypted) when the
// cursor arrives at it, as on every chunk change, and is then discarded.
func (s *Stream) Write(b []byte) (int, error) {
	if s.closed {
		return 0, chunkerr.NewKind(chunkerr.KindClosed, "write on closed stream")
	}
	if !s.writeable {
		return 0, chunkerr.NewKind(chunkerr.KindUnsupportedOp, "backing store is not writeable")
	}
	total := len(b)
	if total == 0 {
		return 0, nil
	}
	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}
	P := s.codec.plainSize
	src := 0
	for src < total {
		remaining := int64(total - src)
		if s.intraOffset == 0 && remaining >= P {
			chunkData := make([]byte, P)
			copy(chunkData, b[src:src+int(P)])
			s.cache.bytes = chunkData
			s.cache.dirty = true
			src += int(P)
			s.intraOffset = P
		} else {
			avail := P - s.intraOffset
			take := avail
			if remaining < take {
				take = remaining
			}
			s.growCache(int(s.intraOffset + take))
			copy(s.cache.bytes[s.intraOffset:], b[src:src+int(take)])
			s.cache.dirty = true
			src += int(take)
			s.intraOffset += take
		}
		if err := s.canonicalize(); err != nil {
			return src, err
		}
	}
	return total, nil
}

// Writeable reports whether the backing store accepted the construction-
// time probe write; if false, Write always fails with KindUnsupportedOp.
func (s *Stream) Writeable() bool { return s.writeable }

// PlainChunkSize returns P, the configured plaintext chunk size.
func (s *Stream) PlainChunkSize() int64 { return s.codec.plainSize }
