package encryption

import (
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmChaCha20, AlgorithmAESGCM} {
		t.Run(string(alg), func(t *testing.T) {
			c, err := New("my-secret-key", alg)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if c.Algorithm() != alg {
				t.Errorf("Algorithm() = %s", c.Algorithm())
			}

			for _, plaintext := range []string{"", "sk-live-123", "こんにちは世界", `{"endpoint":"https://speech"}`} {
				encrypted, err := c.Encrypt(plaintext)
				if err != nil {
					t.Fatalf("Encrypt failed: %v", err)
				}
				if plaintext != "" && encrypted == plaintext {
					t.Error("ciphertext equals plaintext")
				}
				decrypted, err := c.Decrypt(encrypted)
				if err != nil {
					t.Fatalf("Decrypt failed: %v", err)
				}
				if decrypted != plaintext {
					t.Errorf("got %q, want %q", decrypted, plaintext)
				}
			}
		})
	}
}

func TestDefaultAlgorithm(t *testing.T) {
	c, err := New("k", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Algorithm() != AlgorithmChaCha20 {
		t.Errorf("default algorithm = %s", c.Algorithm())
	}
}

func TestNonceIsRandom(t *testing.T) {
	c, _ := New("k", AlgorithmChaCha20)
	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	if a == b {
		t.Error("two encryptions of the same value should differ")
	}
}

func TestDecryptFailures(t *testing.T) {
	c, _ := New("key-one", AlgorithmChaCha20)
	other, _ := New("key-two", AlgorithmChaCha20)
	sealed, _ := c.Encrypt("secret")

	tests := []struct {
		name  string
		input string
		dec   *Cipher
	}{
		{"not base64", "%%%", c},
		{"too short", "AAAA", c},
		{"wrong key", sealed, other},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.dec.Decrypt(tc.input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("", AlgorithmChaCha20); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := New("k", "rot13"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
