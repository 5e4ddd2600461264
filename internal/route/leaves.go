package route

import (
	"reflect"
	"strings"

	"github.com/mark3labs/routeclient/internal/codec"
)

// ParamKind says where an argument of a compiled route ends up.
type ParamKind int

const (
	ParamCapture ParamKind = iota + 1
	ParamCaptureAll
	ParamQuery
	ParamQueryList
	ParamHeader
	ParamBody
)

func (k ParamKind) String() string {
	switch k {
	case ParamCapture:
		return "capture"
	case ParamCaptureAll:
		return "captureAll"
	case ParamQuery:
		return "query"
	case ParamQueryList:
		return "queryList"
	case ParamHeader:
		return "header"
	case ParamBody:
		return "body"
	}
	return "unknown"
}

// Multi reports whether the parameter takes a sequence of values.
func (k ParamKind) Multi() bool { return k == ParamCaptureAll || k == ParamQueryList }

// Param describes one argument a route consumes. For bodies Name holds the
// content type.
type Param struct {
	Kind ParamKind
	Name string
}

// ParamOf returns the argument n consumes. The second result is false for
// nodes that take no argument.
func ParamOf(n Node) (Param, bool) {
	switch n := n.(type) {
	case *Capture:
		return Param{Kind: ParamCapture, Name: n.Param}, true
	case *CaptureAll:
		return Param{Kind: ParamCaptureAll, Name: n.Param}, true
	case *QueryParam:
		return Param{Kind: ParamQuery, Name: n.Name}, true
	case *QueryParams:
		return Param{Kind: ParamQueryList, Name: n.Name}, true
	case *Header:
		return Param{Kind: ParamHeader, Name: n.Name}, true
	case *ReqBody:
		return Param{Kind: ParamBody, Name: string(n.ContentType)}, true
	}
	return Param{}, false
}

// LeafInfo summarises one terminal route for listings and tooling.
type LeafInfo struct {
	// Branch holds the Alternative names leading to the leaf.
	Branch      []string
	Method      string
	Template    string
	Params      []Param
	ContentType codec.ContentType
	Response    reflect.Type
}

// Leaves lists every MethodLeaf of a schema in declaration order. The
// template renders captures as {name}, capture-alls as {name...} and query
// parameters as name={name}.
func Leaves(root Node) []LeafInfo {
	var out []LeafInfo
	collectLeaves(root, leafState{}, &out)
	return out
}

type leafState struct {
	branch []string
	path   []string
	query  []string
	params []Param
}

func (s leafState) with(f func(*leafState)) leafState {
	next := leafState{
		branch: append([]string(nil), s.branch...),
		path:   append([]string(nil), s.path...),
		query:  append([]string(nil), s.query...),
		params: append([]Param(nil), s.params...),
	}
	f(&next)
	return next
}

func collectLeaves(n Node, st leafState, out *[]LeafInfo) {
	if IsNil(n) {
		return
	}
	if p, ok := ParamOf(n); ok {
		st = st.with(func(s *leafState) { s.params = append(s.params, p) })
	}
	switch n := n.(type) {
	case *Alternative:
		collectLeaves(n.Branch, st.with(func(s *leafState) { s.branch = append(s.branch, n.Name) }), out)
		collectLeaves(n.Rest, st, out)
		return
	case *Literal:
		st = st.with(func(s *leafState) { s.path = append(s.path, n.Segment) })
	case *Capture:
		st = st.with(func(s *leafState) { s.path = append(s.path, "{"+n.Param+"}") })
	case *CaptureAll:
		st = st.with(func(s *leafState) { s.path = append(s.path, "{"+n.Param+"...}") })
	case *QueryParam:
		st = st.with(func(s *leafState) { s.query = append(s.query, n.Name+"={"+n.Name+"}") })
	case *QueryParams:
		st = st.with(func(s *leafState) { s.query = append(s.query, n.Name+"={"+n.Name+"...}") })
	case *MethodLeaf:
		tmpl := "/" + strings.Join(st.path, "/")
		if len(st.query) > 0 {
			tmpl += "?" + strings.Join(st.query, "&")
		}
		*out = append(*out, LeafInfo{
			Branch:      st.branch,
			Method:      n.Method,
			Template:    tmpl,
			Params:      st.params,
			ContentType: n.ContentType,
			Response:    n.Response,
		})
		return
	}
	collectLeaves(Next(n), st, out)
}
