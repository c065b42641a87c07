package crypto

import (
	"encoding/base64"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ring, err := NewKeyring("k1", map[string][]byte{
		"k1": mustKey(t, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="),
	})
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}

	raw, err := ring.EncryptString("صباح الخير")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	out, err := ring.DecryptString(raw)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if out != "صباح الخير" {
		t.Fatalf("expected original string, got %q", out)
	}
}

func TestDecryptAfterRotation(t *testing.T) {
	oldKey := mustKey(t, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")
	newKey := mustKey(t, "AQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQE=")

	oldRing, err := NewKeyring("old", map[string][]byte{"old": oldKey})
	if err != nil {
		t.Fatalf("old keyring: %v", err)
	}
	legacy, err := oldRing.EncryptString("legacy transcript")
	if err != nil {
		t.Fatalf("old encrypt: %v", err)
	}

	rotated, err := NewKeyring("new", map[string][]byte{"old": oldKey, "new": newKey})
	if err != nil {
		t.Fatalf("rotated keyring: %v", err)
	}
	plain, err := rotated.DecryptString(legacy)
	if err != nil {
		t.Fatalf("decrypt with old key: %v", err)
	}
	if plain != "legacy transcript" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestUnknownKeyIDFails(t *testing.T) {
	ring, err := NewKeyring("k1", map[string][]byte{
		"k1": mustKey(t, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="),
	})
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	if _, err := ring.DecryptString(`{"key_id":"missing","nonce":"","ciphertext":""}`); err == nil {
		t.Fatal("expected error for unknown key id")
	}
}

func mustKey(t *testing.T, b64 string) []byte {
	t.Helper()
	k, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("decode key: %v", err)
	}
	if len(k) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(k))
	}
	return k
}
