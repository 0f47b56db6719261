// Package envelope signs request payloads for the repository service and
// verifies them on the receiving side.
//
// Every request body is an envelope:
//
//	{"user": "alice", "signature": "<hex>", "data": {...}}
//
// The signature is HMAC-SHA512 keyed with the user's token over the user
// name followed by the canonical form of data (see package canonical). The
// data member carries the payload as-is; the receiver canonicalizes it again
// to verify. When there is no payload, data is omitted and the signature
// covers the user name alone.
//
// # Tokens
//
// A token is the hex SHA-512 digest of the user's passphrase. The
// passphrase itself never leaves the client:
//
//	token := envelope.DeriveToken([]byte(passphrase))
//
// Token implements fmt.Stringer and prints as a redacted placeholder so it
// does not end up in logs by accident.
//
// # Building Envelopes
//
//	signer, err := envelope.NewHMACSHA512Signer("alice", token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	env, err := envelope.Build(signer, map[string]any{"name": "myrepo", "type": "git"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	body, err := json.Marshal(env)
//
// # Verifying Envelopes
//
// Verify recomputes the signature with a token looked up by user name:
//
//	resolver := func(user string) (envelope.Token, error) {
//	    return tokens[user], nil
//	}
//
//	err := envelope.Verify(env, envelope.VerifyConfig{Resolver: resolver})
//
// Middleware wraps the same check for HTTP handlers and stores the verified
// envelope in the request context (see FromContext).
package envelope
