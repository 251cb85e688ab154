package backing

import (
	"bytes"
	"io"
	"testing"
)

func TestMemStoreReadWriteSeek(t *testing.T) {
	m := NewMemStore()
	if _, err := m.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := m.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 5)
	n, err := m.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 5 || !bytes.Equal(buf, []byte("hello")) {
		t.Fatalf("got %q", buf[:n])
	}
}

func TestMemStoreGrowsOnWritePastEnd(t *testing.T) {
	m := NewMemStoreFrom([]byte("abc"))
	if _, err := m.Seek(10, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := m.Write([]byte("xyz")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(m.Bytes()) != 13 {
		t.Fatalf("expected buffer to grow to 13 bytes, got %d", len(m.Bytes()))
	}
}

func TestMemStoreNegativeSeekFails(t *testing.T) {
	m := NewMemStore()
	if _, err := m.Seek(-1, io.SeekStart); err == nil {
		t.Fatal("expected negative seek to fail")
	}
}

func TestMemStoreClosedRejectsIO(t *testing.T) {
	m := NewMemStore()
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Write([]byte("x")); err == nil {
		t.Fatal("expected write on closed store to fail")
	}
	if _, err := m.Read(make([]byte, 1)); err == nil {
		t.Fatal("expected read on closed store to fail")
	}
}
