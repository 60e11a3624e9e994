package hash

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestShort(t *testing.T) {
	full := SHA256Hex("192.168.1.1")

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"12 chars", 12, full[:12]},
		{"zero", 0, ""},
		{"longer than hash", 100, full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Short("192.168.1.1", tt.n); got != tt.want {
				t.Errorf("Short(_, %d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestIteratedSHA256(t *testing.T) {
	// 1 iteration should equal a single SHA256
	oneIter := IteratedSHA256("test", 1)
	single := SHA256Hex("test")
	if oneIter != single {
		t.Errorf("IteratedSHA256(\"test\", 1) = %s, want %s", oneIter, single)
	}

	multiIter := IteratedSHA256("test", 5000)
	if multiIter == single {
		t.Error("5000 iterations should differ from single iteration")
	}

	if again := IteratedSHA256("test", 5000); multiIter != again {
		t.Error("IteratedSHA256 should be deterministic")
	}
}

func TestHashClientID(t *testing.T) {
	id := "550e8400-e29b-41d4-a716-446655440000"
	h := HashClientID(id)

	if len(h) != 64 {
		t.Errorf("HashClientID length = %d, want 64", len(h))
	}
	if h != HashClientID(id) {
		t.Error("HashClientID should be deterministic")
	}
	if h == HashClientID("another-client") {
		t.Error("different client ids should produce different hashes")
	}
	if h == id {
		t.Error("hash must not equal the raw id")
	}
}
