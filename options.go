package amiwo

import (
	"fmt"
	"log"
)

// DefaultMaxBodySize is the number of request body bytes read by
// [FromRequest] and [Bind] before giving up with [ErrBodyTooLarge].
const DefaultMaxBodySize = 32768

type options struct {
	maxBodySize int64
	contentType string
	logger      *log.Logger
}

// Option configures request parsing.
type Option func(*options) error

// WithMaxBodySize returns an Option that sets the maximum number of body
// bytes to read. The size n must be a positive integer.
func WithMaxBodySize(n int64) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("amiwo: max body size must be a positive integer")
		}
		o.maxBodySize = n
		return nil
	}
}

// WithContentType returns an Option that forces the body to be parsed as the
// given media type, ignoring the request's Content-Type header.
func WithContentType(mediaType string) Option {
	return func(o *options) error {
		if mediaType == "" {
			return fmt.Errorf("amiwo: content type must not be empty")
		}
		o.contentType = mediaType
		return nil
	}
}

// WithLogger returns an Option that directs parse warnings to l. By default
// nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

func newOptions(opts []Option) (options, error) {
	o := options{maxBodySize: DefaultMaxBodySize}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return o, err
		}
	}
	return o, nil
}

func (o *options) logf(format string, args ...any) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}
