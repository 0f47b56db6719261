package client

import (
	"errors"
	"fmt"
	"net/http"
)

// UnknownErrorMessage is reported when a failed response carries no error
// description.
const UnknownErrorMessage = "Unknown error"

var (
	// ErrNoSigner is returned by New when Config has no Signer.
	ErrNoSigner = errors.New("client: signer must not be nil")

	// ErrInvalidBaseURL is returned by New when BaseURL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("client: invalid base url")

	// ErrInvalidSSHKey is returned when a key file does not hold an
	// OpenSSH public key.
	ErrInvalidSSHKey = errors.New("client: not an ssh public key")

	// ErrMissingField is returned by result accessors when the response
	// lacks the expected member.
	ErrMissingField = errors.New("client: response field missing")
)

// TransportError reports that the service could not be reached: the
// connection was refused, timed out, or broke before a response arrived.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("can't connect to %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response with a status other than 200.
// Message holds the service's error description when there is one and
// UnknownErrorMessage otherwise.
type ProtocolError struct {
	Status  int
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// StatusText returns the status line text, e.g. "403 Forbidden".
func (e *ProtocolError) StatusText() string {
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// DecodeError reports a successful status whose body could not be decoded
// as a JSON object.
type DecodeError struct {
	Status int
	Body   []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response from service (status %d): %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// LocalResourceError reports a local input, such as a key file, that
// cannot be used.
type LocalResourceError struct {
	Path string
	Err  error
}

func (e *LocalResourceError) Error() string {
	return fmt.Sprintf("can't open file : %s: %v", e.Path, e.Err)
}

func (e *LocalResourceError) Unwrap() error {
	return e.Err
}
