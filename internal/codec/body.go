package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"slices"
	"strings"

	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"
)

// ContentType tags the payload format of a request body or response.
type ContentType string

const (
	JSON        ContentType = "json"
	PlainText   ContentType = "text"
	YAML        ContentType = "yaml"
	Form        ContentType = "form"
	OctetStream ContentType = "octet-stream"
)

// Body encodes request payloads and decodes response payloads for one
// content type.
type Body interface {
	// MediaType is used for the Content-Type and Accept headers.
	MediaType() string
	// Structured reports whether responses are decoded into a typed value.
	// Unstructured bodies are returned to the caller as raw text.
	Structured() bool
	Encode(v any) ([]byte, error)
	// Decode parses data into a new value of shape. Failures are
	// *DecodeFailure.
	Decode(data []byte, shape reflect.Type) (any, error)
}

// DecodeFailure describes a payload that did not match the declared shape.
// Path locates the offending field when the codec knows it.
type DecodeFailure struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeFailure) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

func (e *DecodeFailure) Unwrap() error { return e.Err }

type jsonBody struct{}

func (jsonBody) MediaType() string { return "application/json" }
func (jsonBody) Structured() bool  { return true }

func (jsonBody) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonBody) Decode(data []byte, shape reflect.Type) (any, error) {
	ptr := reflect.New(shape)
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(ptr.Interface()); err != nil {
		return nil, jsonFailure(err)
	}
	if dec.More() {
		return nil, &DecodeFailure{Reason: "unexpected data after top-level value"}
	}
	return ptr.Elem().Interface(), nil
}

func jsonFailure(err error) *DecodeFailure {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := "$"
		if typeErr.Field != "" {
			path += "." + typeErr.Field
		}
		return &DecodeFailure{
			Path:   path,
			Reason: fmt.Sprintf("cannot decode %s into %s", typeErr.Value, typeErr.Type),
			Err:    err,
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &DecodeFailure{
			Reason: fmt.Sprintf("%s (offset %d)", syntaxErr.Error(), syntaxErr.Offset),
			Err:    err,
		}
	}
	return &DecodeFailure{Reason: err.Error(), Err: err}
}

type yamlBody struct{}

func (yamlBody) MediaType() string { return "application/yaml" }
func (yamlBody) Structured() bool  { return true }

func (yamlBody) Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlBody) Decode(data []byte, shape reflect.Type) (any, error) {
	ptr := reflect.New(shape)
	if err := yaml.Unmarshal(data, ptr.Interface()); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, &DecodeFailure{Reason: strings.Join(typeErr.Errors, "; "), Err: err}
		}
		return nil, &DecodeFailure{Reason: err.Error(), Err: err}
	}
	return ptr.Elem().Interface(), nil
}

// formBody encodes structs as application/x-www-form-urlencoded using the
// `json` field names, and decodes form-encoded responses back into structs.
type formBody struct {
	enc *schema.Encoder
	dec *schema.Decoder
}

func newFormBody() formBody {
	enc := schema.NewEncoder()
	enc.SetAliasTag("json")
	dec := schema.NewDecoder()
	dec.SetAliasTag("json")
	dec.IgnoreUnknownKeys(true)
	return formBody{enc: enc, dec: dec}
}

func (formBody) MediaType() string { return "application/x-www-form-urlencoded" }
func (formBody) Structured() bool  { return true }

func (f formBody) Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case url.Values:
		return []byte(t.Encode()), nil
	case map[string][]string:
		return []byte(url.Values(t).Encode()), nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, &TypeError{Codec: "form", Value: v}
	}
	values := url.Values{}
	if err := f.enc.Encode(rv.Interface(), values); err != nil {
		return nil, fmt.Errorf("form encode: %w", err)
	}
	return []byte(values.Encode()), nil
}

func (f formBody) Decode(data []byte, shape reflect.Type) (any, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, &DecodeFailure{Reason: err.Error(), Err: err}
	}
	if shape == reflect.TypeFor[url.Values]() {
		return values, nil
	}
	if shape.Kind() != reflect.Struct {
		return nil, &DecodeFailure{Reason: fmt.Sprintf("form payloads decode into structs, not %s", shape)}
	}
	ptr := reflect.New(shape)
	if err := f.dec.Decode(ptr.Interface(), values); err != nil {
		var multi schema.MultiError
		if errors.As(err, &multi) {
			fields := slices.Sorted(maps.Keys(multi))
			if len(fields) > 0 {
				return nil, &DecodeFailure{Path: fields[0], Reason: multi[fields[0]].Error(), Err: err}
			}
		}
		return nil, &DecodeFailure{Reason: err.Error(), Err: err}
	}
	return ptr.Elem().Interface(), nil
}

// rawBody passes payloads through untouched. Responses are never decoded.
type rawBody struct{ mediaType string }

func (r rawBody) MediaType() string { return r.mediaType }
func (rawBody) Structured() bool    { return false }

func (r rawBody) Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return bytes.Clone(t), nil
	case fmt.Stringer:
		return []byte(t.String()), nil
	}
	return nil, &TypeError{Codec: r.mediaType, Value: v}
}

func (rawBody) Decode(data []byte, _ reflect.Type) (any, error) {
	return string(data), nil
}
