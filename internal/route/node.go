// Package route defines the combinators a route schema is built from.
//
// A schema is a tree of Node values. Literal, Capture, CaptureAll,
// QueryParam, QueryParams, Header and ReqBody each contribute one piece of a
// request and continue with Next; Alternative fans out into named branches;
// MethodLeaf terminates a path with an HTTP method, a response shape and a
// content type.
//
//	api := route.Alternatives(
//		route.Branch("getWidget", route.Lit("widgets",
//			route.Cap("id", codec.Int, route.Get[Widget](codec.JSON)))),
//		route.Branch("health", route.Lit("healthz", route.Get[string](codec.PlainText))),
//	)
package route

import (
	"reflect"

	"github.com/mark3labs/routeclient/internal/codec"
)

// Kind identifies a Node variant.
type Kind int

const (
	KindResource Kind = iota + 1
	KindAlternative
	KindLiteral
	KindCapture
	KindCaptureAll
	KindQueryParam
	KindQueryParams
	KindHeader
	KindReqBody
	KindMethodLeaf
)

var kindNames = map[Kind]string{
	KindResource:    "Resource",
	KindAlternative: "Alternative",
	KindLiteral:     "Literal",
	KindCapture:     "Capture",
	KindCaptureAll:  "CaptureAll",
	KindQueryParam:  "QueryParam",
	KindQueryParams: "QueryParams",
	KindHeader:      "Header",
	KindReqBody:     "ReqBody",
	KindMethodLeaf:  "MethodLeaf",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(?)"
}

// Node is one combinator of a route schema. The set of implementations is
// closed; all of them live in this package.
type Node interface {
	Kind() Kind
	node()
}

// Resource wraps a method set.
type Resource struct {
	Methods Node `validate:"-"`
}

// Alternative is a named branch followed by the rest of the chain. Rest is
// nil at the end of the chain.
type Alternative struct {
	Name   string `validate:"required"`
	Branch Node   `validate:"-"`
	Rest   Node   `validate:"-"`
}

// Literal contributes a fixed path segment.
type Literal struct {
	Segment string `validate:"required,excludes=/"`
	Next    Node   `validate:"-"`
}

// Capture consumes one value and contributes one path segment.
type Capture struct {
	Param string          `validate:"required"`
	Codec codec.PathCodec `validate:"-"`
	Next  Node            `validate:"-"`
}

// CaptureAll consumes a sequence of values, one path segment each.
type CaptureAll struct {
	Param string          `validate:"required"`
	Codec codec.PathCodec `validate:"-"`
	Next  Node            `validate:"-"`
}

// QueryParam consumes an optional value and contributes at most one query pair.
type QueryParam struct {
	Name  string          `validate:"required"`
	Codec codec.PathCodec `validate:"-"`
	Next  Node            `validate:"-"`
}

// QueryParams consumes a sequence of values, one query pair each, all under Name.
type QueryParams struct {
	Name  string          `validate:"required"`
	Codec codec.PathCodec `validate:"-"`
	Next  Node            `validate:"-"`
}

// Header consumes one value sent as the named header.
type Header struct {
	Name  string            `validate:"required,printascii,excludes=:"`
	Codec codec.HeaderCodec `validate:"-"`
	Next  Node              `validate:"-"`
}

// ReqBody consumes one value encoded as the request payload.
type ReqBody struct {
	ContentType codec.ContentType `validate:"required"`
	Next        Node              `validate:"-"`
}

// MethodLeaf terminates a route.
type MethodLeaf struct {
	Method      string            `validate:"required,alpha"`
	Response    reflect.Type      `validate:"-"`
	ContentType codec.ContentType `validate:"required"`
}

func (*Resource) Kind() Kind    { return KindResource }
func (*Alternative) Kind() Kind { return KindAlternative }
func (*Literal) Kind() Kind     { return KindLiteral }
func (*Capture) Kind() Kind     { return KindCapture }
func (*CaptureAll) Kind() Kind  { return KindCaptureAll }
func (*QueryParam) Kind() Kind  { return KindQueryParam }
func (*QueryParams) Kind() Kind { return KindQueryParams }
func (*Header) Kind() Kind      { return KindHeader }
func (*ReqBody) Kind() Kind     { return KindReqBody }
func (*MethodLeaf) Kind() Kind  { return KindMethodLeaf }

func (*Resource) node()    {}
func (*Alternative) node() {}
func (*Literal) node()     {}
func (*Capture) node()     {}
func (*CaptureAll) node()  {}
func (*QueryParam) node()  {}
func (*QueryParams) node() {}
func (*Header) node()      {}
func (*ReqBody) node()     {}
func (*MethodLeaf) node()  {}

// Next returns the single continuation of n, or nil for MethodLeaf and
// Alternative.
func Next(n Node) Node {
	switch n := n.(type) {
	case *Resource:
		return n.Methods
	case *Literal:
		return n.Next
	case *Capture:
		return n.Next
	case *CaptureAll:
		return n.Next
	case *QueryParam:
		return n.Next
	case *QueryParams:
		return n.Next
	case *Header:
		return n.Next
	case *ReqBody:
		return n.Next
	}
	return nil
}
