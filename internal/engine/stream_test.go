package engine

import (
	"bytes"
	"io"
	"testing"

	"github.com/chunkfile/chunkfile/aead"
	"github.com/chunkfile/chunkfile/backing"
)

func newTestStream(t *testing.T, plainSize int64) *Stream {
	t.Helper()
	key, err := aead.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	prim, err := aead.NewFernet(key)
	if err != nil {
		t.Fatalf("NewFernet: %v", err)
	}
	s, err := Open(backing.NewMemStore(), prim, plainSize)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func mustReadAll(t *testing.T, s *Stream) []byte {
	t.Helper()
	got, err := s.ReadToEnd()
	if err != nil {
		t.Fatalf("ReadToEnd: %v", err)
	}
	return got
}

// S1: write less than one chunk, round trip.
func TestSmallRoundTrip(t *testing.T) {
	s := newTestStream(t, 256)
	if _, err := s.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := mustReadAll(t, s)
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("got %q want %q", got, "hello")
	}
	if s.Size() != 5 {
		t.Fatalf("Size: got %d want 5", s.Size())
	}
}

// S2: write spanning several chunks, read back in one call.
func TestMultiChunkRoundTrip(t *testing.T) {
	s := newTestStream(t, 16)
	data := bytes.Repeat([]byte("abcdefgh"), 10) // 80 bytes, 5 chunks worth
	if _, err := s.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := mustReadAll(t, s)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes want %d", len(got), len(data))
	}
}

// S3: overwrite a middle span straddling a chunk boundary; verify splice
// correctness against a byte-slice reference model.
func TestOverwriteMiddleSpansChunkBoundary(t *testing.T) {
	s := newTestStream(t, 16)
	original := bytes.Repeat([]byte{'A'}, 40)
	if _, err := s.Write(original); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Seek(10, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	patch := bytes.Repeat([]byte{'Z'}, 10)
	if _, err := s.Write(patch); err != nil {
		t.Fatalf("Write patch: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := mustReadAll(t, s)

	want := append([]byte{}, original...)
	copy(want[10:20], patch)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

// S4: seeking past EOF then reading returns nothing and leaves the
// cursor pinned at the real end of file, not at the requested offset.
func TestSeekPastEOFThenRead(t *testing.T) {
	s := newTestStream(t, 16)
	if _, err := s.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Seek(1000, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 10)
	n, err := s.Read(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("Read past EOF: got n=%d err=%v", n, err)
	}
	if s.Pos() != s.Size() {
		t.Fatalf("cursor not pinned at size: pos=%d size=%d", s.Pos(), s.Size())
	}
}

// S5: a read-only backing store rejects writes but still serves reads.
func TestReadOnlyStoreRejectsWrites(t *testing.T) {
	key, err := aead.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	prim, err := aead.NewFernet(key)
	if err != nil {
		t.Fatalf("NewFernet: %v", err)
	}
	mem := backing.NewMemStore()
	rw, err := Open(mem, prim, 16)
	if err != nil {
		t.Fatalf("Open rw: %v", err)
	}
	if _, err := rw.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// rw.Close closed mem, so reopen over a copy of its bytes.
	ro, err := Open(readOnlyStore{backing.NewMemStoreFrom(mem.Bytes())}, prim, 16)
	if err != nil {
		t.Fatalf("Open ro: %v", err)
	}
	if ro.Writeable() {
		t.Fatal("expected read-only store to be reported unwriteable")
	}
	if _, err := ro.Write([]byte("x")); err == nil {
		t.Fatal("expected write on read-only stream to fail")
	}
	got := mustReadAll(t, ro)
	if !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("got %q want %q", got, "payload")
	}
}

// Writing the same full chunk twice with different data, seeking back in
// between, and reading back yields the second write - dirty chunk
// coherence across the chunk change each full-chunk write causes (the
// cursor moves into the next chunk, flushing the one just written).
func TestRepeatedOverwriteSameChunk(t *testing.T) {
	s := newTestStream(t, 64)
	if _, err := s.Write(bytes.Repeat([]byte{'A'}, 64)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := s.Write(bytes.Repeat([]byte{'B'}, 64)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := mustReadAll(t, s)
	if !bytes.Equal(got, bytes.Repeat([]byte{'B'}, 64)) {
		t.Fatalf("got %q", got)
	}
}

func TestTamperedChunkFailsAuthentication(t *testing.T) {
	key, err := aead.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	prim, err := aead.NewFernet(key)
	if err != nil {
		t.Fatalf("NewFernet: %v", err)
	}
	mem := backing.NewMemStore()
	s, err := Open(mem, prim, 16)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Write([]byte("0123456789ABCDEF")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw := mem.Bytes()
	raw[len(raw)-1] ^= 0xFF

	s2, err := Open(backing.NewMemStoreFrom(raw), prim, 16)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	buf := make([]byte, 16)
	if _, err := s2.Read(buf); err == nil {
		t.Fatal("expected tampered chunk to fail authentication, not read silently")
	}
}

func TestNegativeSeekFailsAndRollsBack(t *testing.T) {
	s := newTestStream(t, 16)
	if _, err := s.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Seek(3, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	before := s.Pos()
	if _, err := s.Seek(-100, io.SeekCurrent); err == nil {
		t.Fatal("expected negative absolute seek to fail")
	}
	if s.Pos() != before {
		t.Fatalf("cursor not rolled back: got %d want %d", s.Pos(), before)
	}
}

// readOnlyStore wraps a Store, forwarding everything but Write.
type readOnlyStore struct {
	*backing.MemStore
}

func (r readOnlyStore) Write(p []byte) (int, error) {
	return 0, io.ErrClosedPipe
}
