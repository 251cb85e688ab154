package config

import "testing"

func TestExtractSize(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"512 B", 512},
		{"4 KBi", 4 << 10},
		{"5 MBi", 5 << 20},
		{"1 GBi", 1 << 30},
	}
	for _, c := range cases {
		got, err := extractSize(c.in)
		if err != nil {
			t.Fatalf("extractSize(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("extractSize(%q): got %d want %d", c.in, got, c.want)
		}
	}
}

func TestExtractSizeRejectsBadUnit(t *testing.T) {
	if _, err := extractSize("5 TBi"); err == nil {
		t.Fatal("expected unknown unit to fail")
	}
}

func TestExtractSizeRejectsMalformed(t *testing.T) {
	if _, err := extractSize("notasize"); err == nil {
		t.Fatal("expected malformed size to fail")
	}
}
