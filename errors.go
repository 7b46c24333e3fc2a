package amiwo

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by [FromRequest] and [Bind]. Match with
// [errors.Is].
var (
	// ErrUnsupportedMediaType is returned when the request carries a content
	// type this package does not know how to parse. Callers routing requests
	// through multiple parsers can treat this as "not for me" and pass the
	// request on.
	ErrUnsupportedMediaType = errors.New("amiwo: unsupported media type")

	// ErrBodyTooLarge is returned when the request body exceeds the configured
	// size limit.
	ErrBodyTooLarge = errors.New("amiwo: request body too large")

	// ErrEmptyBody is returned when the request body contains no data.
	ErrEmptyBody = errors.New("amiwo: empty request body")
)

// ParseError describes a failure to parse a request payload. It wraps the
// underlying decoding error and records the content type that was being
// parsed.
type ParseError struct {
	ContentType string
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("amiwo: cannot parse %s payload: %v", e.ContentType, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
