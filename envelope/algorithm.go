package envelope

// Algorithm identifies the keyed hash used for envelope signatures.
type Algorithm string

// AlgorithmHMACSHA512 is HMAC using SHA-512, the only algorithm the
// repository service accepts.
const AlgorithmHMACSHA512 Algorithm = "hmac-sha512"

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// Signer creates signatures over envelope messages.
type Signer interface {
	// Sign produces a signature over the given message bytes.
	Sign(message []byte) ([]byte, error)

	// Algorithm returns the algorithm identifier for this signer.
	Algorithm() Algorithm

	// KeyID returns the identity the signature is made for. It is sent as
	// the envelope's user.
	KeyID() string
}

// Verifier validates signatures over envelope messages.
type Verifier interface {
	// Verify checks that signature is valid for the given message bytes.
	// Returns nil on success, non-nil on failure.
	Verify(message, signature []byte) error

	// Algorithm returns the algorithm identifier for this verifier.
	Algorithm() Algorithm

	// KeyID returns the identity this verifier checks signatures for.
	KeyID() string
}
