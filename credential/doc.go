// Package credential resolves the signing token for a request.
//
// A token supplied by the caller (flag, environment, config file) is used
// as-is. Otherwise the operator is prompted once for a passphrase, which is
// digested into a token and wiped from memory straight away. An interrupted
// prompt yields ErrUserCancelled and nothing is signed or sent.
package credential
