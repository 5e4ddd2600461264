// Package request holds the immutable accumulator that route compilation
// threads through a schema, and the transport-ready descriptor it finalizes to.
package request

import (
	"slices"
	"strings"
)

// Pair is a single name/value entry of a query string or header list.
type Pair struct {
	Name  string
	Value string
}

// Content is an encoded request payload and its media type.
type Content struct {
	Payload   []byte
	MediaType string
}

// Builder accumulates partial request state. It is a value type: every method
// returns a new Builder and never writes into storage shared with the receiver,
// so one Builder may safely fan out into any number of branches.
//
// The zero value is the empty builder.
type Builder struct {
	path   []string
	query  []Pair
	header []Pair
	body   *Content
}

// Empty returns the builder every compilation starts from.
func Empty() Builder { return Builder{} }

// AppendSegment adds one path segment.
func (b Builder) AppendSegment(segment string) Builder {
	b.path = append(slices.Clip(b.path), segment)
	return b
}

// AppendQuery adds one name=value query pair after the existing ones.
func (b Builder) AppendQuery(name, value string) Builder {
	b.query = append(slices.Clip(b.query), Pair{Name: name, Value: value})
	return b
}

// AppendHeader puts a header ahead of the previously accumulated headers.
func (b Builder) AppendHeader(name, value string) Builder {
	header := make([]Pair, 0, len(b.header)+1)
	header = append(header, Pair{Name: name, Value: value})
	b.header = append(header, b.header...)
	return b
}

// AppendContent attaches the request payload. When mediaType is set a
// Content-Type header is prepended as well and replaces any Content-Type
// added before it, whether by an earlier payload or by AppendHeader.
// Attaching content twice keeps only the last payload and its Content-Type.
func (b Builder) AppendContent(payload []byte, mediaType string) Builder {
	if mediaType != "" || (b.body != nil && b.body.MediaType != "") {
		b.header = dropContentType(b.header)
	}
	b.body = &Content{Payload: slices.Clone(payload), MediaType: mediaType}
	if mediaType != "" {
		b = b.AppendHeader(ContentTypeHeader, mediaType)
	}
	return b
}

// ContentTypeHeader is the header AppendContent maintains.
const ContentTypeHeader = "Content-Type"

func dropContentType(header []Pair) []Pair {
	out := make([]Pair, 0, len(header))
	for _, h := range header {
		if strings.EqualFold(h.Name, ContentTypeHeader) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Path returns a copy of the accumulated path segments.
func (b Builder) Path() []string { return slices.Clone(b.path) }

// Query returns a copy of the accumulated query pairs.
func (b Builder) Query() []Pair { return slices.Clone(b.query) }

// Header returns a copy of the accumulated headers, newest first.
func (b Builder) Header() []Pair { return slices.Clone(b.header) }

// Body returns the attached content, or nil.
func (b Builder) Body() *Content {
	if b.body == nil {
		return nil
	}
	c := *b.body
	return &c
}

// Finalize renders the accumulated state into a Request for the given method.
// Path segments and query values are emitted verbatim; nothing is escaped.
func (b Builder) Finalize(method string, accept Accept) *Request {
	return &Request{
		Method: method,
		URL:    b.URL(),
		Header: b.Header(),
		Body:   b.Body(),
		Accept: accept,
	}
}

// URL renders "/" + segments joined by "/", followed by "?" and the query
// pairs when there are any.
func (b Builder) URL() string {
	var sb strings.Builder
	sb.WriteByte('/')
	sb.WriteString(strings.Join(b.path, "/"))
	for i, q := range b.query {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(q.Name)
		sb.WriteByte('=')
		sb.WriteString(q.Value)
	}
	return sb.String()
}
