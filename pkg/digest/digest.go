// Package digest serves hash and signature verification requests over NATS,
// running each request as a job on a worker pool.
package digest

import (
	"errors"
	"fmt"

	"github.com/fluxorio/threadpool/pkg/crypto"
)

// Request asks for a digest of Data, optionally verifying Signature first.
// Byte fields travel as base64 strings in JSON.
type Request struct {
	Algorithm          string `json:"algorithm"`
	Data               []byte `json:"data"`
	PublicKey          []byte `json:"public_key,omitempty"`
	Signature          []byte `json:"signature,omitempty"`
	SignatureAlgorithm string `json:"signature_algorithm,omitempty"`
}

// Response carries either a digest or an error
type Response struct {
	Digest   []byte `json:"digest,omitempty"`
	Verified bool   `json:"verified,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ErrMissingPublicKey is returned when a signature arrives without a key
var ErrMissingPublicKey = errors.New("digest: signature given without public key")

// Process handles one request. When a signature is present it must verify
// before the digest is computed.
func Process(req Request) Response {
	alg, err := crypto.ParseHashAlgorithm(req.Algorithm)
	if err != nil {
		return Response{Error: err.Error()}
	}

	var verified bool
	if len(req.Signature) > 0 {
		if len(req.PublicKey) == 0 {
			return Response{Error: ErrMissingPublicKey.Error()}
		}
		sigAlg := crypto.Ed25519
		if req.SignatureAlgorithm != "" {
			if sigAlg, err = crypto.ParseSignatureAlgorithm(req.SignatureAlgorithm); err != nil {
				return Response{Error: err.Error()}
			}
		}
		if err := crypto.Verify(sigAlg, req.PublicKey, req.Data, req.Signature); err != nil {
			return Response{Error: fmt.Sprintf("verify: %v", err)}
		}
		verified = true
	}

	sum, err := crypto.Sum(alg, req.Data)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{Digest: sum, Verified: verified}
}
