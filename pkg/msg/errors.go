package msg

import "errors"

var (
	// Container errors
	ErrFormat = errors.New("malformed text archive")

	// Decode errors
	ErrTruncatedEscape = errors.New("escape sequence truncated")
	ErrUnknownCode     = errors.New("unknown character code")

	// Encode errors
	ErrUnknownGrapheme = errors.New("unknown grapheme")
	ErrEscapeArity     = errors.New("escape placeholder parameter mismatch")
)
