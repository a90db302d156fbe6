package tracking

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func TestHasher_Digest_IsDeterministic(t *testing.T) {
	h := NewHasher("test-secret-key")

	d1 := h.Digest("12345", "alice")
	d2 := h.Digest("12345", "alice")
	if d1 != d2 {
		t.Errorf("same input should yield same digest: %q != %q", d1, d2)
	}
}

func TestHasher_Digest_MatchesConcatenatedSHA1(t *testing.T) {
	secret := "test-secret-key"
	h := NewHasher(secret)

	sum := sha1.Sum([]byte("12345" + "alice" + secret))
	want := hex.EncodeToString(sum[:])

	if got := h.Digest("12345", "alice"); got != want {
		t.Errorf("Digest = %q, want %q", got, want)
	}
}

func TestHasher_Digest_IsLowercaseHex40(t *testing.T) {
	h := NewHasher("test-secret-key")

	d := h.Digest("12345", "alice")
	if len(d) != 40 {
		t.Fatalf("digest length = %d, want 40", len(d))
	}
	for _, c := range d {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Fatalf("digest contains non-hex rune %q", c)
		}
	}
}

func TestHasher_Digest_ChangesWithEachInput(t *testing.T) {
	h := NewHasher("test-secret-key")
	base := h.Digest("12345", "alice")

	if h.Digest("12346", "alice") == base {
		t.Error("different value should change the digest")
	}
	if h.Digest("12345", "bob") == base {
		t.Error("different identity should change the digest")
	}
	if NewHasher("another-secret").Digest("12345", "alice") == base {
		t.Error("different secret key should change the digest")
	}
}
