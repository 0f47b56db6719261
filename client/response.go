package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// Response is a successful (200) answer from the service.
type Response struct {
	// Status is the HTTP status code, always 200.
	Status int

	// Header holds the response headers.
	Header http.Header

	// Body is the raw response body.
	Body []byte

	// Data is Body decoded as a JSON object. Numbers are json.Number.
	Data map[string]any

	// RequestID is the X-Request-ID of the exchange.
	RequestID string
}

// Entry is one key/value pair of a response object, rendered as text.
type Entry struct {
	Key   string
	Value string
}

// Message returns the "message" member when it is a string.
func (r *Response) Message() string {
	v, _ := r.Field("message")
	msg, _ := v.(string)

	return msg
}

// Field returns the raw member named key.
func (r *Response) Field(key string) (any, bool) {
	v, ok := r.Data[key]
	return v, ok
}

// Object returns the member named key as an object.
func (r *Response) Object(key string) (map[string]any, error) {
	v, ok := r.Field(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, not an object", ErrMissingField, key, v)
	}

	return obj, nil
}

// Repositories returns the repository names of a list response, sorted.
// The service sends either an object keyed by name or an array of names.
func (r *Response) Repositories() ([]string, error) {
	v, ok := r.Data["repositories"]
	if !ok {
		return nil, fmt.Errorf("%w: repositories", ErrMissingField)
	}

	var names []string

	switch repos := v.(type) {
	case map[string]any:
		names = make([]string, 0, len(repos))
		for name := range repos {
			names = append(names, name)
		}

	case []any:
		names = make([]string, 0, len(repos))
		for _, item := range repos {
			names = append(names, Text(item))
		}

	default:
		return nil, fmt.Errorf("%w: repositories is %T", ErrMissingField, v)
	}

	slices.Sort(names)

	return names, nil
}

// Entries returns the members of the response object sorted by key.
func (r *Response) Entries() []Entry {
	return Entries(r.Data)
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Entries renders the members of obj sorted by key.
func Entries(obj map[string]any) []Entry {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: Text(obj[k])})
	}

	return entries
}

// Text renders a decoded JSON value for display. Strings are printed as-is,
// null as empty text and anything else as compact JSON.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}

		return "false"
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}

var errNotObject = errors.New("response is not a JSON object")

// decodeObject decodes body as a single JSON object.
func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	if dec.More() {
		return nil, errors.New("unexpected trailing data after JSON value")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	return obj, nil
}

// errorMessage extracts the "error" member of a failed response.
func errorMessage(body []byte) string {
	obj, err := decodeObject(body)
	if err != nil {
		return UnknownErrorMessage
	}

	v, ok := obj["error"]
	if !ok || v == nil {
		return UnknownErrorMessage
	}

	msg := Text(v)
	if msg == "" {
		return UnknownErrorMessage
	}

	return msg
}
