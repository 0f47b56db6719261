package canonical

import "errors"

var (
	// ErrUnsupportedValue is returned for values that have no canonical
	// representation, such as NaN, infinities, channels or functions.
	ErrUnsupportedValue = errors.New("canonical: unsupported value")

	// ErrInvalidNumber is returned when a json.Number does not hold a valid
	// JSON number literal.
	ErrInvalidNumber = errors.New("canonical: invalid number literal")
)
