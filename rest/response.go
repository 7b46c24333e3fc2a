// Package rest provides a JSON response envelope for REST routes and a small
// HTTP client helper that decodes responses into the same envelope.
package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/humanenginuity/amiwo"
)

// ResponseJSON is the envelope written by REST routes. An OK envelope carries
// the payload in Data; an error envelope additionally describes the failure
// through Message, and optionally the Resource and Method that produced it.
type ResponseJSON struct {
	Success  bool   `json:"success"`
	HTTPCode int    `json:"http_code"`
	Data     any    `json:"data,omitempty"`
	Message  string `json:"message,omitempty"`
	Resource string `json:"resource,omitempty"`
	Method   string `json:"method,omitempty"`
}

// OK returns an empty successful envelope with HTTP code 200.
func OK() *ResponseJSON {
	return &ResponseJSON{
		Success:  true,
		HTTPCode: http.StatusOK,
	}
}

// Err returns an empty error envelope with HTTP code 500 and a default
// message.
func Err() *ResponseJSON {
	return &ResponseJSON{
		Success:  false,
		HTTPCode: http.StatusInternalServerError,
		Message:  "Unexpected error",
	}
}

// WithHTTPCode sets the HTTP code of the envelope.
func (r *ResponseJSON) WithHTTPCode(code int) *ResponseJSON {
	r.HTTPCode = code
	return r
}

// WithData sets the payload of the envelope.
func (r *ResponseJSON) WithData(data any) *ResponseJSON {
	r.Data = data
	return r
}

// WithMessage sets the failure message. Error envelopes only; calling it on
// an OK envelope does nothing.
func (r *ResponseJSON) WithMessage(msg string) *ResponseJSON {
	if r.Success {
		log.Printf("rest: ignoring message on OK envelope")
		return r
	}
	r.Message = msg
	return r
}

// WithResource sets the resource that was being accessed. Error envelopes
// only; calling it on an OK envelope does nothing.
func (r *ResponseJSON) WithResource(resource string) *ResponseJSON {
	if r.Success {
		log.Printf("rest: ignoring resource on OK envelope")
		return r
	}
	r.Resource = resource
	return r
}

// WithMethod sets the HTTP method that was used. Error envelopes only;
// calling it on an OK envelope does nothing.
func (r *ResponseJSON) WithMethod(method string) *ResponseJSON {
	if r.Success {
		log.Printf("rest: ignoring method on OK envelope")
		return r
	}
	r.Method = method
	return r
}

// IsOK reports whether the envelope describes a success.
func (r *ResponseJSON) IsOK() bool {
	return r.Success
}

// IsError reports whether the envelope describes a failure.
func (r *ResponseJSON) IsError() bool {
	return !r.Success
}

// FromValue lifts a decoded JSON value into an envelope. A value already
// shaped like an envelope is copied field by field; any other value becomes
// the Data of a fresh OK envelope.
func FromValue(v any) *ResponseJSON {
	obj, ok := asObject(v)
	if !ok {
		return OK().WithData(v)
	}

	switch {
	case isOKShape(obj):
		return OK().
			WithHTTPCode(intField(obj, "http_code")).
			WithData(obj["data"])
	case isErrorShape(obj):
		r := Err().
			WithHTTPCode(intField(obj, "http_code")).
			WithData(obj["data"])
		if msg, ok := stringField(obj, "message"); ok {
			r = r.WithMessage(msg)
		}
		if resource, ok := stringField(obj, "resource"); ok {
			r = r.WithResource(resource)
		}
		if method, ok := stringField(obj, "method"); ok {
			r = r.WithMethod(method)
		}
		return r
	default:
		return OK().WithData(v)
	}
}

// FromReader decodes a JSON document from r and lifts it with [FromValue].
func FromReader(r io.Reader) (*ResponseJSON, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("rest: cannot decode response: %w", err)
	}
	return FromValue(v), nil
}

// Write serialises the envelope and writes it to w with Content-Type
// application/json and the envelope's HTTP code as status.
func (r *ResponseJSON) Write(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.HTTPCode)
	if err := json.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("rest: cannot encode response: %w", err)
	}
	return nil
}

// WriteError writes an error envelope with the given status code and message.
// This helper reduces duplication across API handlers.
func WriteError(w http.ResponseWriter, status int, msg string) {
	if err := Err().WithHTTPCode(status).WithMessage(msg).Write(w); err != nil {
		log.Printf("rest: failed to write error response: %v", err)
	}
}

// BadRequest writes a 400 Bad Request error envelope.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, msg)
}

// NotFound writes a 404 Not Found error envelope.
func NotFound(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusNotFound, msg)
}

// MethodNotAllowed writes a 405 Method Not Allowed error envelope.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// InternalServerError writes a 500 Internal Server Error error envelope.
func InternalServerError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusInternalServerError, msg)
}

// isOKShape reports whether obj looks like a serialised OK envelope: success
// true, a numeric http_code, and none of the error-only fields.
func isOKShape(obj map[string]any) bool {
	if !amiwo.ContainsKeys(obj, "success", "http_code") {
		return false
	}
	success, ok := obj["success"].(bool)
	if !ok || !success {
		return false
	}
	if !isNumber(obj["http_code"]) {
		return false
	}
	return obj["message"] == nil && obj["resource"] == nil && obj["method"] == nil
}

// isErrorShape reports whether obj looks like a serialised error envelope:
// success false, a numeric http_code, and error-only fields that are strings
// when present.
func isErrorShape(obj map[string]any) bool {
	if !amiwo.ContainsKeys(obj, "success", "http_code") {
		return false
	}
	success, ok := obj["success"].(bool)
	if !ok || success {
		return false
	}
	if !isNumber(obj["http_code"]) {
		return false
	}
	for _, key := range []string{"message", "resource", "method"} {
		if obj[key] == nil {
			continue
		}
		if _, ok := obj[key].(string); !ok {
			return false
		}
	}
	return true
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case amiwo.Map:
		return obj, true
	default:
		return nil, false
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case json.Number, float64, int:
		return true
	default:
		return false
	}
}

func intField(obj map[string]any, key string) int {
	switch n := obj[key].(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}
