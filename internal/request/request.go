package request

import "strings"

// Accept selects how the response of a request is treated.
type Accept struct {
	// MediaType is sent as the Accept header; empty sends none.
	MediaType string
	// Decode is true when the payload will be decoded into a structured value
	// and false when it is handed back as raw text.
	Decode bool
}

// Request is a transport-ready request descriptor. URL is relative to
// whatever base the transport targets.
type Request struct {
	Method string
	URL    string
	Header []Pair
	Body   *Content
	Accept Accept
}

// HeaderValue returns the first header value with the given name
// (case-insensitive) and whether it was present.
func (r *Request) HeaderValue(name string) (string, bool) {
	for _, h := range r.Header {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// HeaderValues returns every value recorded under name.
func (r *Request) HeaderValues(name string) []string {
	var out []string
	for _, h := range r.Header {
		if strings.EqualFold(h.Name, name) {
			out = append(out, h.Value)
		}
	}
	return out
}
