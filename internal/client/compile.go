package client

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/mark3labs/routeclient/internal/codec"
	"github.com/mark3labs/routeclient/internal/request"
	"github.com/mark3labs/routeclient/internal/route"
	"github.com/mark3labs/routeclient/internal/transport"
)

type settings struct {
	registry *codec.Registry
	logger   *slog.Logger
}

// Option configures New.
type Option func(*settings)

// WithRegistry replaces the default body codec registry.
func WithRegistry(r *codec.Registry) Option { return func(s *settings) { s.registry = r } }

// WithLogger sets the logger invocations report to. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.logger = l } }

// New validates schema, resolves the codec of every ReqBody and MethodLeaf
// once, and compiles the schema against an empty request. Structural
// defects and unknown content types are reported here, never per call.
func New(schema route.Node, t transport.Transport, opts ...Option) (Client, error) {
	if t == nil {
		return nil, errors.New("client: nil transport")
	}
	s := settings{registry: codec.DefaultRegistry()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if err := route.Validate(schema); err != nil {
		return nil, fmt.Errorf("client: invalid schema: %w", err)
	}
	bodies, err := bind(schema, s.registry)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	c := &compiler{
		env:    &env{transport: t, logger: s.logger},
		bodies: bodies,
	}
	return c.compile(schema, request.Empty()), nil
}

// bind looks up the codec of every content-typed node.
func bind(root route.Node, reg *codec.Registry) (map[route.Node]codec.Body, error) {
	bodies := map[route.Node]codec.Body{}
	var errs []error
	var visit func(n route.Node)
	visit = func(n route.Node) {
		if route.IsNil(n) {
			return
		}
		var ct codec.ContentType
		switch n := n.(type) {
		case *route.Alternative:
			visit(n.Branch)
			visit(n.Rest)
			return
		case *route.ReqBody:
			ct = n.ContentType
		case *route.MethodLeaf:
			ct = n.ContentType
		}
		if ct != "" {
			body, err := reg.Lookup(ct)
			if err != nil {
				errs = append(errs, err)
			} else {
				bodies[n] = body
			}
		}
		visit(route.Next(n))
	}
	visit(root)
	return bodies, errors.Join(errs...)
}

type compiler struct {
	env    *env
	bodies map[route.Node]codec.Body
}

// compile maps one schema node and the request accumulated so far to a
// client. It holds no state of its own, so compiling a schema twice yields
// trees that behave identically.
func (c *compiler) compile(n route.Node, b request.Builder) Client {
	switch n := n.(type) {
	case *route.Resource:
		return c.compile(n.Methods, b)

	case *route.Alternative:
		named := Named{n.Name: c.compile(n.Branch, b)}
		if !route.IsNil(n.Rest) {
			for name, branch := range c.compile(n.Rest, b).(Named) {
				named[name] = branch
			}
		}
		return named

	case *route.Literal:
		return c.compile(n.Next, b.AppendSegment(n.Segment))

	case *route.Capture:
		return c.fn(n, func(v any) (Client, error) {
			piece, err := n.Codec.PathPiece(v)
			if err != nil {
				return nil, argErr(n.Param, err)
			}
			return c.compile(n.Next, b.AppendSegment(piece)), nil
		})

	case *route.CaptureAll:
		return c.fn(n, func(v any) (Client, error) {
			values, err := sequence(v)
			if err != nil {
				return nil, argErr(n.Param, err)
			}
			next := b
			for _, item := range values {
				piece, err := n.Codec.PathPiece(item)
				if err != nil {
					return nil, argErr(n.Param, err)
				}
				next = next.AppendSegment(piece)
			}
			return c.compile(n.Next, next), nil
		})

	case *route.QueryParam:
		return c.fn(n, func(v any) (Client, error) {
			value, present := optional(v)
			if !present {
				return c.compile(n.Next, b), nil
			}
			piece, err := n.Codec.PathPiece(value)
			if err != nil {
				return nil, argErr(n.Name, err)
			}
			return c.compile(n.Next, b.AppendQuery(n.Name, piece)), nil
		})

	case *route.QueryParams:
		return c.fn(n, func(v any) (Client, error) {
			values, err := sequence(v)
			if err != nil {
				return nil, argErr(n.Name, err)
			}
			next := b
			for _, item := range values {
				piece, err := n.Codec.PathPiece(item)
				if err != nil {
					return nil, argErr(n.Name, err)
				}
				next = next.AppendQuery(n.Name, piece)
			}
			return c.compile(n.Next, next), nil
		})

	case *route.Header:
		return c.fn(n, func(v any) (Client, error) {
			s, err := n.Codec.HeaderString(v)
			if err != nil {
				return nil, argErr(n.Name, err)
			}
			return c.compile(n.Next, b.AppendHeader(n.Name, s)), nil
		})

	case *route.ReqBody:
		body := c.bodies[n]
		return c.fn(n, func(v any) (Client, error) {
			payload, err := body.Encode(v)
			if err != nil {
				return nil, argErr("body", err)
			}
			return c.compile(n.Next, b.AppendContent(payload, body.MediaType())), nil
		})

	case *route.MethodLeaf:
		return &Invocation{
			method:      n.Method,
			contentType: n.ContentType,
			shape:       n.Response,
			body:        c.bodies[n],
			builder:     b,
			env:         c.env,
		}
	}
	// Unreachable for validated schemas.
	panic(fmt.Sprintf("client: cannot compile %T", n))
}

func (c *compiler) fn(n route.Node, apply func(any) (Client, error)) *Func {
	p, _ := route.ParamOf(n)
	return &Func{param: p, apply: apply}
}

func argErr(param string, err error) error {
	return &ArgumentError{Param: param, Message: "invalid argument", Err: err}
}

// sequence flattens a slice or array argument. nil is the empty sequence.
func sequence(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if items, ok := v.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a slice or array, got %T", v)
}

// optional unwraps an optional argument: nil and nil pointers are absent,
// other pointers are dereferenced.
func optional(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	return v, true
}
