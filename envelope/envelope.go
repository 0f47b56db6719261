package envelope

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/vitalvas/blih/canonical"
)

// Envelope is the signed body of every request sent to the service.
type Envelope struct {
	// User is the identity the request is made for.
	User string `json:"user"`

	// Signature is the lowercase hex HMAC over User and the canonical
	// form of Data.
	Signature string `json:"signature"`

	// Data is the operation payload, sent as supplied. Nil when the
	// operation has none.
	Data any `json:"data,omitempty"`
}

// HasData reports whether the envelope carries a payload.
func (e *Envelope) HasData() bool {
	return !canonical.IsAbsent(e.Data)
}

// Message returns the bytes an envelope signature covers: the identity
// followed by the canonical form of payload.
func Message(identity string, payload any) ([]byte, error) {
	body, err := canonical.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg := make([]byte, 0, len(identity)+len(body))
	msg = append(msg, identity...)
	msg = append(msg, body...)

	return msg, nil
}

// Build signs payload for the signer's identity and returns the envelope.
// Absent payloads (anything whose JSON form is null or {}) are left out of
// the envelope and signed as the identity alone.
func Build(s Signer, payload any) (*Envelope, error) {
	if s == nil {
		return nil, ErrNoSigner
	}

	identity := s.KeyID()
	if identity == "" {
		return nil, ErrNoIdentity
	}

	msg, err := Message(identity, payload)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing payload: %w", err)
	}

	sig, err := s.Sign(msg)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		User:      identity,
		Signature: hex.EncodeToString(sig),
	}

	if !canonical.IsAbsent(payload) {
		env.Data = payload
	}

	return env, nil
}

// Sign returns the hex signature for identity and payload under token.
func Sign(token Token, identity string, payload any) (string, error) {
	signer, err := NewHMACSHA512Signer(identity, token)
	if err != nil {
		return "", err
	}

	env, err := Build(signer, payload)
	if err != nil {
		return "", err
	}

	return env.Signature, nil
}

// Decode parses an envelope from a request body. Numbers in Data are kept
// as json.Number so that verification sees the literals that were sent.
func Decode(body []byte) (*Envelope, error) {
	var raw struct {
		User      string          `json:"user"`
		Signature string          `json:"signature"`
		Data      json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	if raw.User == "" {
		return nil, fmt.Errorf("%w: missing user", ErrMalformedEnvelope)
	}

	if raw.Signature == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrMalformedEnvelope)
	}

	env := &Envelope{User: raw.User, Signature: raw.Signature}

	if !canonical.IsAbsent(raw.Data) {
		data, err := decodeData(raw.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
		}

		env.Data = data
	}

	return env, nil
}
