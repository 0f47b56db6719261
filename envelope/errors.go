package envelope

import "errors"

// Signing errors.
var (
	// ErrNoSigner is returned when Build is called without a Signer.
	ErrNoSigner = errors.New("envelope: signer must not be nil")

	// ErrNoIdentity is returned when the signing identity is empty.
	ErrNoIdentity = errors.New("envelope: identity must not be empty")
)

// Verification errors.
var (
	// ErrNoResolver is returned when VerifyConfig has no TokenResolver
	// configured.
	ErrNoResolver = errors.New("envelope: token resolver must not be nil")

	// ErrMalformedEnvelope is returned when a request body is not a valid
	// envelope.
	ErrMalformedEnvelope = errors.New("envelope: malformed envelope")

	// ErrUnknownUser is returned by resolvers that have no token for the
	// envelope's user.
	ErrUnknownUser = errors.New("envelope: unknown user")

	// ErrSignatureInvalid is returned when signature verification fails.
	ErrSignatureInvalid = errors.New("envelope: signature verification failed")
)

// Key material errors.
var (
	// ErrInvalidKey is returned when the token is empty.
	ErrInvalidKey = errors.New("envelope: invalid key material")
)
