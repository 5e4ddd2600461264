package codec

import (
	"fmt"
	"maps"
	"slices"
)

// Registry maps content type tags to body codecs. A Registry is never
// mutated after construction, so it can be shared freely.
type Registry struct {
	bodies map[ContentType]Body
}

// DefaultRegistry knows JSON, PlainText, YAML, Form and OctetStream.
func DefaultRegistry() *Registry {
	return &Registry{bodies: map[ContentType]Body{
		JSON:        jsonBody{},
		PlainText:   rawBody{mediaType: "text/plain;charset=utf-8"},
		YAML:        yamlBody{},
		Form:        newFormBody(),
		OctetStream: rawBody{mediaType: "application/octet-stream"},
	}}
}

// With returns a copy of the registry with ct bound to body.
func (r *Registry) With(ct ContentType, body Body) *Registry {
	bodies := maps.Clone(r.bodies)
	if bodies == nil {
		bodies = make(map[ContentType]Body, 1)
	}
	bodies[ct] = body
	return &Registry{bodies: bodies}
}

// UnknownContentTypeError is returned by Lookup for unregistered tags.
type UnknownContentTypeError struct {
	ContentType ContentType
	Known       []ContentType
}

func (e *UnknownContentTypeError) Error() string {
	return fmt.Sprintf("codec: unknown content type %q (known: %v)", e.ContentType, e.Known)
}

// Lookup returns the codec bound to ct.
func (r *Registry) Lookup(ct ContentType) (Body, error) {
	if b, ok := r.bodies[ct]; ok {
		return b, nil
	}
	return nil, &UnknownContentTypeError{ContentType: ct, Known: r.ContentTypes()}
}

// ContentTypes lists the registered tags in sorted order.
func (r *Registry) ContentTypes() []ContentType {
	return slices.Sorted(maps.Keys(r.bodies))
}

// ParseContentType maps a media type such as "application/json; charset=utf-8"
// or a short tag such as "json" to a registered tag. The second result is
// false when nothing matches.
func (r *Registry) ParseContentType(s string) (ContentType, bool) {
	if _, ok := r.bodies[ContentType(s)]; ok {
		return ContentType(s), true
	}
	mt := MediaTypeBase(s)
	for _, ct := range r.ContentTypes() {
		if MediaTypeBase(r.bodies[ct].MediaType()) == mt {
			return ct, true
		}
	}
	return parseWellKnown(mt)
}
