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

func TestSHA256Hex_Empty(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := SHA256Hex("")
	if got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestShort(t *testing.T) {
	full := SHA256Hex("203.0.113.7")

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"4 chars", 4, full[:4]},
		{"12 chars", 12, full[:12]},
		{"too long returns full", 100, full},
		{"zero returns full", 0, full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Short("203.0.113.7", tt.n)
			if got != tt.want {
				t.Errorf("Short(%d) = %s, want %s", tt.n, got, tt.want)
			}
		})
	}
}

func TestForLog(t *testing.T) {
	got := ForLog("10.0.0.1")
	if len(got) != 12 {
		t.Errorf("ForLog length = %d, want 12", len(got))
	}
	if got == ForLog("10.0.0.2") {
		t.Error("different inputs should produce different hashes")
	}
}

func TestVoterKey(t *testing.T) {
	if VoterKey("Alice") != VoterKey("  alice ") {
		t.Error("VoterKey should ignore case and surrounding space")
	}
	if VoterKey("Alice") == VoterKey("Bob") {
		t.Error("different voters should produce different keys")
	}
}
