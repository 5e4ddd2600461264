package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/mark3labs/routeclient/internal/codec"
	"github.com/mark3labs/routeclient/internal/request"
)

// Doer captures the subset of *http.Client the HTTP transport relies on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Status, http.StatusText(e.Status))
}

// FormatError reports a response whose Content-Type does not match the
// media type that was requested.
type FormatError struct {
	Want string
	Got  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("response content type %q does not match requested %q", e.Got, e.Want)
}

const defaultMaxBody = 32 << 20

// HTTP executes requests against a base URL.
type HTTP struct {
	base    string
	doer    Doer
	header  []request.Pair
	timeout time.Duration
	maxBody int64
}

// HTTPOption configures NewHTTP.
type HTTPOption func(*HTTP)

// WithDoer replaces http.DefaultClient.
func WithDoer(d Doer) HTTPOption { return func(h *HTTP) { h.doer = d } }

// WithHeader adds a header to every request, before the route's own headers.
func WithHeader(name, value string) HTTPOption {
	return func(h *HTTP) { h.header = append(h.header, request.Pair{Name: name, Value: value}) }
}

// WithTimeout bounds every exchange, including reading the body.
func WithTimeout(d time.Duration) HTTPOption { return func(h *HTTP) { h.timeout = d } }

// WithMaxBodySize caps the decoded response body. The default is 32 MiB.
func WithMaxBodySize(n int64) HTTPOption { return func(h *HTTP) { h.maxBody = n } }

// NewHTTP returns a transport that prefixes every request URL with baseURL.
// Request URLs are appended verbatim.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("transport: base URL %q must be an absolute http(s) URL", baseURL)
	}
	h := &HTTP{
		base:    strings.TrimRight(baseURL, "/"),
		doer:    http.DefaultClient,
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Execute sends req. Non-2xx statuses yield *StatusError; a structured
// request whose response declares a different media type yields
// *FormatError. A response without a Content-Type is passed through and left
// to the decoder.
func (h *HTTP) Execute(ctx context.Context, req *request.Request) (*Response, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body.Payload)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, h.base+req.URL, body)
	if err != nil {
		return nil, err
	}
	for _, list := range [][]request.Pair{h.header, req.Header} {
		for _, p := range list {
			if !httpguts.ValidHeaderFieldName(p.Name) || !httpguts.ValidHeaderFieldValue(p.Value) {
				return nil, fmt.Errorf("transport: invalid header %q", p.Name)
			}
			hreq.Header.Add(p.Name, p.Value)
		}
	}
	if req.Accept.MediaType != "" {
		hreq.Header.Set("Accept", req.Accept.MediaType)
	}
	hreq.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := h.doer.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := readLimited(resp.Body, h.maxBody)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	data, err := decompress(resp.Header.Get("Content-Encoding"), raw, h.maxBody)
	if err != nil {
		return nil, err
	}
	resp.Header.Del("Content-Encoding")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: data}
	}
	if req.Accept.Decode && req.Accept.MediaType != "" {
		if got := resp.Header.Get("Content-Type"); got != "" && !codec.MediaTypeMatches(req.Accept.MediaType, got) {
			return nil, &FormatError{Want: req.Accept.MediaType, Got: got}
		}
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

var _ Transport = (*HTTP)(nil)
