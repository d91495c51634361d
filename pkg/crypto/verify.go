package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
)

// ErrVerificationFailed is the single failure signal of Verify.
// Malformed keys, malformed signatures and bad signatures are not told apart.
var ErrVerificationFailed = errors.New("signature verification failed")

// SignatureAlgorithm names a signature scheme
type SignatureAlgorithm int

const (
	Ed25519 SignatureAlgorithm = iota
)

func (a SignatureAlgorithm) String() string {
	switch a {
	case Ed25519:
		return "ed25519"
	default:
		return fmt.Sprintf("SignatureAlgorithm(%d)", int(a))
	}
}

// ParseSignatureAlgorithm accepts the String form, case-insensitive
func ParseSignatureAlgorithm(name string) (SignatureAlgorithm, error) {
	switch strings.ToLower(name) {
	case "ed25519":
		return Ed25519, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Verify checks signature over data with publicKey.
// It returns nil on success and ErrVerificationFailed otherwise.
func Verify(alg SignatureAlgorithm, publicKey, data, signature []byte) error {
	switch alg {
	case Ed25519:
		if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
			return ErrVerificationFailed
		}
		if !ed25519.Verify(ed25519.PublicKey(publicKey), data, signature) {
			return ErrVerificationFailed
		}
		return nil
	default:
		return ErrVerificationFailed
	}
}
