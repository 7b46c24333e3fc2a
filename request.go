package amiwo

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Media types recognised by [FromRequest] and [Bind].
const (
	MediaTypeForm = "application/x-www-form-urlencoded"
	MediaTypeJSON = "application/json"
)

// FromRequest reads the request body and parses it into a [FormMap],
// dispatching on the request's Content-Type header. Form-encoded bodies are
// parsed with [ParseForm]; JSON bodies, including +json media type suffixes,
// with [ParseJSON].
//
// A request with any other content type is left untouched and
// [ErrUnsupportedMediaType] is returned, so callers can forward the request
// to another handler. Bodies larger than the configured limit yield
// [ErrBodyTooLarge].
func FromRequest(r *http.Request, opts ...Option) (*FormMap, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	parse, mediaType, err := parserFor(r, &o)
	if err != nil {
		return nil, err
	}

	body, err := readBody(r.Body, o.maxBodySize)
	if err != nil {
		return nil, err
	}

	fm, err := parse(body)
	if err != nil {
		o.logf("amiwo: cannot parse %s request body: %v", mediaType, err)
		return nil, err
	}
	return fm, nil
}

// Bind reads the request body and decodes it into the value pointed to by v,
// dispatching on the request's Content-Type header exactly as [FromRequest]
// does. Form-encoded bodies are decoded with [Unmarshal]; JSON bodies with
// encoding/json.
func Bind(r *http.Request, v any, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	mediaType, err := requestMediaType(r, &o)
	if err != nil {
		return err
	}

	body, err := readBody(r.Body, o.maxBodySize)
	if err != nil {
		return err
	}

	switch {
	case mediaType == MediaTypeForm:
		err = Unmarshal(body, v)
	default:
		err = json.Unmarshal(body, v)
	}
	if err != nil {
		o.logf("amiwo: cannot bind %s request body: %v", mediaType, err)
		return err
	}
	return nil
}

func parserFor(r *http.Request, o *options) (func([]byte) (*FormMap, error), string, error) {
	mediaType, err := requestMediaType(r, o)
	if err != nil {
		return nil, "", err
	}
	if mediaType == MediaTypeForm {
		return ParseForm, mediaType, nil
	}
	return ParseJSON, mediaType, nil
}

// requestMediaType resolves the media type the body should be parsed as,
// honouring a WithContentType override.
func requestMediaType(r *http.Request, o *options) (string, error) {
	header := o.contentType
	if header == "" {
		header = r.Header.Get("Content-Type")
	}
	if header == "" {
		o.logf("amiwo: request has no content type")
		return "", fmt.Errorf("%w: none given", ErrUnsupportedMediaType)
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, header)
	}

	switch {
	case mediaType == MediaTypeForm, mediaType == MediaTypeJSON, strings.HasSuffix(mediaType, "+json"):
		return mediaType, nil
	default:
		o.logf("amiwo: unsupported content type %q", mediaType)
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
}

// readBody reads at most max bytes from r. Reading even a single byte beyond
// the limit fails rather than silently truncating the payload.
func readBody(r io.Reader, max int64) ([]byte, error) {
	if r == nil {
		return nil, ErrEmptyBody
	}
	body, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("amiwo: failed to read body: %w", err)
	}
	if int64(len(body)) > max {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}
