package credential

import (
	"errors"
	"fmt"
)

var (
	// ErrUserCancelled is returned when the operator interrupts the
	// passphrase prompt.
	ErrUserCancelled = errors.New("credential: cancelled by user")

	// ErrNoPrompter is returned when no token was supplied and there is no
	// Prompter to ask for a passphrase.
	ErrNoPrompter = errors.New("credential: no token and no prompter configured")
)

// AuthResolutionError reports that no signing token could be obtained.
type AuthResolutionError struct {
	User string
	Err  error
}

func (e *AuthResolutionError) Error() string {
	return fmt.Sprintf("credential: cannot resolve token for %q: %v", e.User, e.Err)
}

func (e *AuthResolutionError) Unwrap() error {
	return e.Err
}
