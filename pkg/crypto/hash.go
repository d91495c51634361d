// Package crypto is the narrow boundary to the hashing and signature
// primitives used alongside the pool. Every function is pure and stateless.
package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var (
	// ErrUnknownAlgorithm is returned for an algorithm outside the supported set
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrOutputSize is returned when the output buffer does not match the digest size
	ErrOutputSize = errors.New("output buffer has wrong size")
)

// HashAlgorithm names a fixed-digest hash function
type HashAlgorithm int

const (
	Blake2b256 HashAlgorithm = iota
	Blake2b512
	SHA256
	SHA512
)

// Digest sizes in bytes
const (
	Blake2b256Size = blake2b.Size256
	Blake2b512Size = blake2b.Size
	SHA256Size     = sha256.Size
	SHA512Size     = sha512.Size
)

// Size returns the digest length, or 0 for an unknown algorithm
func (a HashAlgorithm) Size() int {
	switch a {
	case Blake2b256:
		return Blake2b256Size
	case Blake2b512:
		return Blake2b512Size
	case SHA256:
		return SHA256Size
	case SHA512:
		return SHA512Size
	default:
		return 0
	}
}

func (a HashAlgorithm) String() string {
	switch a {
	case Blake2b256:
		return "blake2b-256"
	case Blake2b512:
		return "blake2b-512"
	case SHA256:
		return "sha-256"
	case SHA512:
		return "sha-512"
	default:
		return fmt.Sprintf("HashAlgorithm(%d)", int(a))
	}
}

// ParseHashAlgorithm accepts the String form, case-insensitive, with or without dashes
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch strings.ReplaceAll(strings.ToLower(name), "-", "") {
	case "blake2b256":
		return Blake2b256, nil
	case "blake2b512":
		return Blake2b512, nil
	case "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Hash writes the digest of data into out.
// len(out) must equal alg.Size().
func Hash(alg HashAlgorithm, data, out []byte) error {
	size := alg.Size()
	if size == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
	if len(out) != size {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrOutputSize, alg, size, len(out))
	}

	switch alg {
	case Blake2b256:
		sum := blake2b.Sum256(data)
		copy(out, sum[:])
	case Blake2b512:
		sum := blake2b.Sum512(data)
		copy(out, sum[:])
	case SHA256:
		sum := sha256.Sum256(data)
		copy(out, sum[:])
	case SHA512:
		sum := sha512.Sum512(data)
		copy(out, sum[:])
	}
	return nil
}

// Sum returns a freshly allocated digest of data
func Sum(alg HashAlgorithm, data []byte) ([]byte, error) {
	out := make([]byte, alg.Size())
	if err := Hash(alg, data, out); err != nil {
		return nil, err
	}
	return out, nil
}
