package engine

import (
	"encoding/binary"
	"io"

	"github.com/chunkfile/chunkfile/internal/chunkerr"
)

// HeaderWidth is W: the width, in bytes, of each of the two little-endian
// unsigned integers stored at the front of every chunked file. Don't touch
// this unless you mean to change the on-disk format; existing files
// encoded with a different width will not parse.
const HeaderWidth = 8

// headerSize is 2*W: last_chunk_index and last_chunk_padding back to back.
const headerSize = HeaderWidth * 2

// header is the in-memory mirror of the on-disk tail bookkeeping. hasData
// is false only for a file that has never had a single chunk flushed to
// it yet; it exists because (lastChunkIndex: 0, lastChunkPadding: 0) is
// itself a legitimate header (a single, exactly-full chunk) and must not
// be confused with "nothing has been written".
type header struct {
	lastChunkIndex   uint64
	lastChunkPadding uint64
	hasData          bool
}

// readHeader reads the header from the front of s, if present. A store
// shorter than headerSize but non-empty is corrupt; a store with nothing
// at all is a brand new file and yields a zero header.
func readHeader(s Store) (header, error) {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return header{}, chunkerr.WrapKind(err, chunkerr.KindIO, "seek to header")
	}
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(s, buf)
	switch {
	case err == io.EOF && n == 0:
		return header{}, nil
	case err == io.ErrUnexpectedEOF:
		return header{}, chunkerr.NewKind(chunkerr.KindCorruption, "header shorter than 2W bytes")
	case err != nil && err != io.EOF:
		return header{}, chunkerr.WrapKind(err, chunkerr.KindIO, "read header")
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return header{}, chunkerr.WrapKind(err, chunkerr.KindIO, "seek to end")
	}
	return header{
		lastChunkIndex:   binary.LittleEndian.Uint64(buf[:HeaderWidth]),
		lastChunkPadding: binary.LittleEndian.Uint64(buf[HeaderWidth:]),
		hasData:          end > headerSize,
	}, nil
}

// writeHeader writes h to the front of s.
func writeHeader(s Store, h header) error {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return chunkerr.WrapKind(err, chunkerr.KindIO, "seek to header")
	}
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(buf[:HeaderWidth], h.lastChunkIndex)
	binary.LittleEndian.PutUint64(buf[HeaderWidth:], h.lastChunkPadding)
	if _, err := s.Write(buf); err != nil {
		return chunkerr.WrapKind(err, chunkerr.KindIO, "write header")
	}
	return nil
}
