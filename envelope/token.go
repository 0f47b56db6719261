package envelope

import (
	"crypto/sha512"
	"encoding/hex"
)

// redacted is what a Token prints as.
const redacted = "[REDACTED]"

// Token is the signing key of a user: the lowercase hex SHA-512 digest of
// the user's passphrase. Convert with string(t) to get the key material.
type Token string

// DeriveToken hashes a passphrase into a Token.
func DeriveToken(secret []byte) Token {
	sum := sha512.Sum512(secret)
	return Token(hex.EncodeToString(sum[:]))
}

// String implements fmt.Stringer and never reveals the token.
func (t Token) String() string {
	if t == "" {
		return ""
	}

	return redacted
}

// GoString implements fmt.GoStringer for %#v.
func (t Token) GoString() string {
	return t.String()
}

// IsZero reports whether no token is set.
func (t Token) IsZero() bool {
	return t == ""
}
