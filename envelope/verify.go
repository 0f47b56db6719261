package envelope

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// TokenResolver returns the token registered for user. Implementations
// return ErrUnknownUser (possibly wrapped) when there is none.
type TokenResolver func(user string) (Token, error)

// VerifyConfig configures envelope verification.
type VerifyConfig struct {
	// Resolver looks up the token of the envelope's user. Required.
	Resolver TokenResolver
}

// Verify checks the envelope signature by recomputing it from the user's
// token and the canonical form of the envelope data.
func Verify(env *Envelope, cfg VerifyConfig) error {
	if cfg.Resolver == nil {
		return ErrNoResolver
	}

	if env == nil || env.User == "" {
		return fmt.Errorf("%w: missing user", ErrMalformedEnvelope)
	}

	sig, err := hex.DecodeString(env.Signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not hex encoded", ErrMalformedEnvelope)
	}

	token, err := cfg.Resolver(env.User)
	if err != nil {
		return err
	}

	verifier, err := NewHMACSHA512Verifier(env.User, token)
	if err != nil {
		return err
	}

	msg, err := Message(env.User, env.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	return verifier.Verify(msg, sig)
}

// VerifyBody decodes and verifies a raw request body.
func VerifyBody(body []byte, cfg VerifyConfig) (*Envelope, error) {
	env, err := Decode(body)
	if err != nil {
		return nil, err
	}

	if err := Verify(env, cfg); err != nil {
		return nil, err
	}

	return env, nil
}

// MapResolver returns a TokenResolver backed by a user → passphrase map.
// Passphrases are digested once when the resolver is created.
func MapResolver(passphrases map[string]string) TokenResolver {
	tokens := make(map[string]Token, len(passphrases))
	for user, secret := range passphrases {
		tokens[user] = DeriveToken([]byte(secret))
	}

	return func(user string) (Token, error) {
		token, ok := tokens[user]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownUser, user)
		}

		return token, nil
	}
}

func decodeData(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}

	return data, nil
}
