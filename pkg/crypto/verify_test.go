package crypto

import (
	"crypto/ed25519"
	"errors"
	"testing"
)

func TestVerify_Ed25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	data := []byte("release-manifest-v3")
	sig := ed25519.Sign(priv, data)

	if err := Verify(Ed25519, pub, data, sig); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	tampered := append([]byte(nil), sig...)
	tampered[0] ^= 0xff

	otherPub, _, _ := ed25519.GenerateKey(nil)

	failures := []struct {
		name string
		pub  []byte
		data []byte
		sig  []byte
	}{
		{"tampered signature", pub, data, tampered},
		{"wrong data", pub, []byte("release-manifest-v4"), sig},
		{"wrong key", otherPub, data, sig},
		{"short key", pub[:16], data, sig},
		{"short signature", pub, data, sig[:10]},
		{"empty everything", nil, nil, nil},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			if err := Verify(Ed25519, tt.pub, tt.data, tt.sig); !errors.Is(err, ErrVerificationFailed) {
				t.Errorf("Verify() error = %v, want ErrVerificationFailed", err)
			}
		})
	}
}

func TestVerify_UnknownAlgorithm(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	sig := ed25519.Sign(priv, []byte("x"))

	if err := Verify(SignatureAlgorithm(9), pub, []byte("x"), sig); !errors.Is(err, ErrVerificationFailed) {
		t.Errorf("Verify() error = %v, want ErrVerificationFailed", err)
	}
}

func TestParseSignatureAlgorithm(t *testing.T) {
	if alg, err := ParseSignatureAlgorithm("Ed25519"); err != nil || alg != Ed25519 {
		t.Errorf("ParseSignatureAlgorithm(Ed25519) = %v, %v", alg, err)
	}
	if _, err := ParseSignatureAlgorithm("rsa"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("ParseSignatureAlgorithm(rsa) error = %v, want ErrUnknownAlgorithm", err)
	}
}
