package credential

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vitalvas/blih/envelope"
)

// Credentials are what the caller knows about the requester.
type Credentials struct {
	// User is the identity requests are signed for. Required.
	User string

	// Token is a pre-derived token. When empty, the Resolver prompts.
	Token envelope.Token
}

// Prompter asks the operator for a passphrase. The returned slice is owned
// by the caller, which wipes it after use.
type Prompter interface {
	Prompt(ctx context.Context) ([]byte, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context) ([]byte, error)

// Prompt calls f(ctx).
func (f PrompterFunc) Prompt(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// Resolver turns Credentials into a signing token.
type Resolver struct {
	// Prompter is consulted when Credentials carry no token.
	Prompter Prompter

	// Logger receives debug messages. Secrets are never logged. Nil
	// disables logging.
	Logger *zerolog.Logger
}

func (r *Resolver) logger() *zerolog.Logger {
	if r.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}

	return r.Logger
}

// Resolve returns the token for creds, prompting at most once.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) (envelope.Token, error) {
	if creds.User == "" {
		return "", &AuthResolutionError{Err: envelope.ErrNoIdentity}
	}

	if !creds.Token.IsZero() {
		r.logger().Debug().Str("user", creds.User).Msg("using supplied token")
		return creds.Token, nil
	}

	if r.Prompter == nil {
		return "", &AuthResolutionError{User: creds.User, Err: ErrNoPrompter}
	}

	if err := ctx.Err(); err != nil {
		return "", &AuthResolutionError{User: creds.User, Err: ErrUserCancelled}
	}

	r.logger().Debug().Str("user", creds.User).Msg("prompting for passphrase")

	secret, err := r.Prompter.Prompt(ctx)
	defer clear(secret)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = ErrUserCancelled
		}

		return "", &AuthResolutionError{User: creds.User, Err: err}
	}

	return envelope.DeriveToken(secret), nil
}

// Signer resolves the token for creds and returns an envelope signer.
func (r *Resolver) Signer(ctx context.Context, creds Credentials) (envelope.Signer, error) {
	token, err := r.Resolve(ctx, creds)
	if err != nil {
		return nil, err
	}

	return envelope.NewHMACSHA512Signer(creds.User, token)
}
