package route

import (
	"net/http"
	"reflect"

	"github.com/mark3labs/routeclient/internal/codec"
)

func Res(methods Node) Node { return &Resource{Methods: methods} }

func Lit(segment string, next Node) Node { return &Literal{Segment: segment, Next: next} }

func Cap(param string, c codec.PathCodec, next Node) Node {
	return &Capture{Param: param, Codec: c, Next: next}
}

func CapAll(param string, c codec.PathCodec, next Node) Node {
	return &CaptureAll{Param: param, Codec: c, Next: next}
}

func Query(name string, c codec.PathCodec, next Node) Node {
	return &QueryParam{Name: name, Codec: c, Next: next}
}

func QueryList(name string, c codec.PathCodec, next Node) Node {
	return &QueryParams{Name: name, Codec: c, Next: next}
}

func Head(name string, c codec.HeaderCodec, next Node) Node {
	return &Header{Name: name, Codec: c, Next: next}
}

func Body(ct codec.ContentType, next Node) Node {
	return &ReqBody{ContentType: ct, Next: next}
}

// Path prefixes next with one Literal per segment.
func Path(segments []string, next Node) Node {
	for i := len(segments) - 1; i >= 0; i-- {
		next = Lit(segments[i], next)
	}
	return next
}

// Leaf builds a MethodLeaf from an explicit response type.
func Leaf(method string, response reflect.Type, ct codec.ContentType) Node {
	return &MethodLeaf{Method: method, Response: response, ContentType: ct}
}

func Get[T any](ct codec.ContentType) Node    { return Leaf(http.MethodGet, reflect.TypeFor[T](), ct) }
func Post[T any](ct codec.ContentType) Node   { return Leaf(http.MethodPost, reflect.TypeFor[T](), ct) }
func Put[T any](ct codec.ContentType) Node    { return Leaf(http.MethodPut, reflect.TypeFor[T](), ct) }
func Patch[T any](ct codec.ContentType) Node  { return Leaf(http.MethodPatch, reflect.TypeFor[T](), ct) }
func Delete[T any](ct codec.ContentType) Node { return Leaf(http.MethodDelete, reflect.TypeFor[T](), ct) }

// Alt prepends a named branch to rest.
func Alt(name string, branch, rest Node) Node {
	return &Alternative{Name: name, Branch: branch, Rest: rest}
}

// NamedBranch is one entry for Alternatives.
type NamedBranch struct {
	Name string
	Node Node
}

func Branch(name string, n Node) NamedBranch { return NamedBranch{Name: name, Node: n} }

// Alternatives folds branches into an Alternative chain in the given order.
// It returns nil when branches is empty.
func Alternatives(branches ...NamedBranch) Node {
	var rest Node
	for i := len(branches) - 1; i >= 0; i-- {
		rest = Alt(branches[i].Name, branches[i].Node, rest)
	}
	return rest
}
