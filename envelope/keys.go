package envelope

import (
	"crypto/hmac"
	"crypto/sha512"
	"fmt"
)

type hmacSHA512Signer struct {
	key   []byte
	keyID string
}

// NewHMACSHA512Signer creates a Signer for identity keyed with token.
// The UTF-8 bytes of the token string are the HMAC key.
func NewHMACSHA512Signer(identity string, token Token) (Signer, error) {
	if identity == "" {
		return nil, ErrNoIdentity
	}

	if token.IsZero() {
		return nil, fmt.Errorf("%w: token must not be empty", ErrInvalidKey)
	}

	return &hmacSHA512Signer{key: []byte(token), keyID: identity}, nil
}

func (s *hmacSHA512Signer) Sign(message []byte) ([]byte, error) {
	return computeHMAC(s.key, message), nil
}

func (s *hmacSHA512Signer) Algorithm() Algorithm { return AlgorithmHMACSHA512 }
func (s *hmacSHA512Signer) KeyID() string        { return s.keyID }

type hmacSHA512Verifier struct {
	key   []byte
	keyID string
}

// NewHMACSHA512Verifier creates a Verifier for identity keyed with token.
func NewHMACSHA512Verifier(identity string, token Token) (Verifier, error) {
	if identity == "" {
		return nil, ErrNoIdentity
	}

	if token.IsZero() {
		return nil, fmt.Errorf("%w: token must not be empty", ErrInvalidKey)
	}

	return &hmacSHA512Verifier{key: []byte(token), keyID: identity}, nil
}

func (v *hmacSHA512Verifier) Verify(message, signature []byte) error {
	expected := computeHMAC(v.key, message)
	if !hmac.Equal(expected, signature) {
		return ErrSignatureInvalid
	}

	return nil
}

func (v *hmacSHA512Verifier) Algorithm() Algorithm { return AlgorithmHMACSHA512 }
func (v *hmacSHA512Verifier) KeyID() string        { return v.keyID }

func computeHMAC(key, message []byte) []byte {
	h := hmac.New(sha512.New, key)
	h.Write(message)

	return h.Sum(nil)
}
