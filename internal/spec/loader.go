// Package spec turns schema documents into route schemas. It reads OpenAPI
// v3 and Swagger v2 documents through kin-openapi, and its own YAML route
// files.
package spec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routeclient/internal/route"
)

// ErrorCode categorizes loader errors.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs permits file refs in documents fetched over HTTP. Local
	// documents may always reference sibling files.
	AllowFileRefs bool
	// Build applies to OpenAPI documents imported by LoadAny.
	Build []BuildOption
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option { return func(s *Settings) { s.AllowFileRefs = allow } }

// WithBuild appends options used when LoadAny imports an OpenAPI document.
func WithBuild(opts ...BuildOption) Option {
	return func(s *Settings) { s.Build = append(s.Build, opts...) }
}

// source is a document read from disk or fetched over HTTP.
type source struct {
	raw      []byte
	location string
	uri      *url.URL
	isFile   bool
}

// read resolves input to bytes. input may be a filesystem path or an
// http/https URL; file:// URLs are rejected.
func read(ctx context.Context, input string, settings Settings) (*source, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	u, uerr := url.Parse(input)
	if uerr == nil && u.Scheme != "" && u.Host != "" {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return &source{raw: raw, location: input, uri: u}, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return &source{raw: raw, location: abs, uri: &url.URL{Path: filepath.ToSlash(abs)}, isFile: true}, nil
}

// Load reads, validates and returns an OpenAPI v3 document. Swagger v2.0
// input is converted to v3 via openapi2conv.
func Load(ctx context.Context, input string, opts ...Option) (*openapi3.T, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	src, err := read(ctx, input, settings)
	if err != nil {
		return nil, err
	}
	return parseOpenAPI(ctx, src, settings)
}

// LoadAny reads input and returns its route schema. Documents with a
// top-level "routes" key are route files; anything else is treated as
// OpenAPI and imported with BuildSchema.
func LoadAny(ctx context.Context, input string, opts ...Option) (route.Node, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	src, err := read(ctx, input, settings)
	if err != nil {
		return nil, err
	}
	if isRouteFile(src.raw) {
		schema, err := DecodeSchemaFile(src.raw)
		if err != nil {
			return nil, withLocation(err, src.location)
		}
		return schema, nil
	}
	doc, err := parseOpenAPI(ctx, src, settings)
	if err != nil {
		return nil, err
	}
	schema, err := BuildSchema(doc, settings.Build...)
	if err != nil {
		return nil, withLocation(err, src.location)
	}
	return schema, nil
}

func parseOpenAPI(ctx context.Context, src *source, settings Settings) (*openapi3.T, error) {
	version, err := detectSpecVersion(src.raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: src.location, Cause: err}
	}

	var doc *openapi3.T
	switch version {
	case 3:
		doc, err = newLoader(settings, src.isFile).LoadFromDataWithPath(src.raw, src.uri)
		if err != nil {
			return nil, mapValidateOrParseErr(err, src.location)
		}
	case 2:
		doc, err = convertV2ToV3(src.raw)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: src.location, Cause: err}
		}
		if err := newLoader(settings, src.isFile).ResolveRefsIn(doc, src.uri); err != nil {
			return nil, mapValidateOrParseErr(err, src.location)
		}
	}
	if err := doc.Validate(ctx); err != nil && !canProceedDespiteValidation(err) {
		return nil, mapValidateOrParseErr(err, src.location)
	}
	return doc, nil
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(_ *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(filepath.FromSlash(path))
		case "http", "https":
			resp, err := client.Get(uri.String())
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else error.
func detectSpecVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse spec: %w", err)
	}
	if s, _ := root["openapi"].(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
		return 3, nil
	}
	if s, _ := root["swagger"].(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
		return 2, nil
	}
	return 0, errors.New("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

// isRouteFile reports whether data is a mapping with a top-level routes key.
func isRouteFile(data []byte) bool {
	var root map[string]yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return false
	}
	_, ok := root["routes"]
	return ok
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := max(settings.MaxRetries, 1)
	var lastErr error
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// fetchOnce performs one GET. retry is true for network failures, 5xx
// and 429.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
}

func mapValidateOrParseErr(err error, location string) error {
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: extractJSONPointer(err), Cause: err}
}

// withLocation fills in the location of a SpecError produced while building
// a schema from an already-read document.
func withLocation(err error, location string) error {
	var se *SpecError
	if errors.As(err, &se) && se.Location == "" {
		se.Location = location
	}
	return err
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	if me, ok := err.(openapi3.MultiError); ok && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	return jsonPtrRe.FindString(err.Error())
}

// canProceedDespiteValidation reports validation failures a best-effort
// import can survive, such as unresolved refs.
func canProceedDespiteValidation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unresolved ref")
}
