package digest

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestProcess_Hash(t *testing.T) {
	data := []byte("hello pool")
	sha := sha256.Sum256(data)
	b2 := blake2b.Sum512(data)

	tests := []struct {
		alg  string
		want []byte
	}{
		{"sha-256", sha[:]},
		{"SHA256", sha[:]},
		{"blake2b-512", b2[:]},
	}
	for _, tt := range tests {
		t.Run(tt.alg, func(t *testing.T) {
			resp := Process(Request{Algorithm: tt.alg, Data: data})
			if resp.Error != "" {
				t.Fatalf("Process() error = %s", resp.Error)
			}
			if !bytes.Equal(resp.Digest, tt.want) {
				t.Errorf("Process() digest = %x, want %x", resp.Digest, tt.want)
			}
			if resp.Verified {
				t.Error("Process() without signature should not report verified")
			}
		})
	}
}

func TestProcess_UnknownAlgorithm(t *testing.T) {
	resp := Process(Request{Algorithm: "md5", Data: []byte("x")})
	if resp.Error == "" {
		t.Fatal("Process() with md5 should fail")
	}
	if resp.Digest != nil {
		t.Errorf("Process() digest = %x, want none", resp.Digest)
	}
}

func TestProcess_Signature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	data := []byte("signed payload")
	sig := ed25519.Sign(priv, data)

	t.Run("valid", func(t *testing.T) {
		resp := Process(Request{Algorithm: "sha-512", Data: data, PublicKey: pub, Signature: sig})
		if resp.Error != "" {
			t.Fatalf("Process() error = %s", resp.Error)
		}
		if !resp.Verified {
			t.Error("Process() verified = false, want true")
		}
		if len(resp.Digest) != 64 {
			t.Errorf("len(digest) = %d, want 64", len(resp.Digest))
		}
	})

	t.Run("explicit algorithm", func(t *testing.T) {
		resp := Process(Request{Algorithm: "sha-256", Data: data, PublicKey: pub, Signature: sig, SignatureAlgorithm: "Ed25519"})
		if resp.Error != "" || !resp.Verified {
			t.Errorf("Process() = %+v, want verified", resp)
		}
	})

	t.Run("tampered data", func(t *testing.T) {
		resp := Process(Request{Algorithm: "sha-256", Data: []byte("other payload"), PublicKey: pub, Signature: sig})
		if !strings.Contains(resp.Error, "verif") {
			t.Errorf("Process() error = %q, want verification failure", resp.Error)
		}
		if resp.Digest != nil {
			t.Error("Process() should not hash when verification fails")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		resp := Process(Request{Algorithm: "sha-256", Data: data, Signature: sig})
		if resp.Error != ErrMissingPublicKey.Error() {
			t.Errorf("Process() error = %q, want %q", resp.Error, ErrMissingPublicKey.Error())
		}
	})

	t.Run("unknown signature algorithm", func(t *testing.T) {
		resp := Process(Request{Algorithm: "sha-256", Data: data, PublicKey: pub, Signature: sig, SignatureAlgorithm: "rsa"})
		if resp.Error == "" {
			t.Error("Process() with rsa should fail")
		}
	})
}
