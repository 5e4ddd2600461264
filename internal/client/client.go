// Package client compiles a route schema into a tree of callable clients.
//
// The tree mirrors the schema: every Alternative chain becomes a Named map,
// every node that consumes a value becomes a *Func awaiting that value, and
// every MethodLeaf becomes an *Invocation. Trees are immutable and safe for
// concurrent use; each call threads its own request.Builder.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/mark3labs/routeclient/internal/codec"
	"github.com/mark3labs/routeclient/internal/request"
	"github.com/mark3labs/routeclient/internal/route"
	"github.com/mark3labs/routeclient/internal/transport"
)

// Client is one node of a compiled tree: Named, *Func or *Invocation.
type Client interface {
	client()
}

// Named holds the branches of an Alternative chain by name.
type Named map[string]Client

func (Named) client() {}

// Branch returns the client registered under name.
func (n Named) Branch(name string) (Client, error) {
	c, ok := n[name]
	if !ok {
		return nil, &ArgumentError{Message: fmt.Sprintf("no branch %q (have %v)", name, n.Keys())}
	}
	return c, nil
}

// Keys returns the branch names in sorted order.
func (n Named) Keys() []string {
	return slices.Sorted(maps.Keys(n))
}

// Func awaits one argument. Applying it yields the rest of the tree.
type Func struct {
	param route.Param
	apply func(v any) (Client, error)
}

func (*Func) client() {}

// Param describes the argument Apply expects.
func (f *Func) Param() route.Param { return f.param }

// Apply supplies the argument. Values the codec rejects produce an
// *ArgumentError.
func (f *Func) Apply(v any) (Client, error) { return f.apply(v) }

// Invocation performs a request for one MethodLeaf.
type Invocation struct {
	method      string
	contentType codec.ContentType
	shape       reflect.Type
	body        codec.Body
	builder     request.Builder
	env         *env
}

func (*Invocation) client() {}

func (i *Invocation) Method() string                 { return i.method }
func (i *Invocation) ContentType() codec.ContentType { return i.contentType }

// Response is the declared response shape.
func (i *Invocation) Response() reflect.Type { return i.shape }

// Request returns the request Invoke would send.
func (i *Invocation) Request() *request.Request {
	return i.builder.Finalize(i.method, request.Accept{
		MediaType: i.body.MediaType(),
		Decode:    i.body.Structured(),
	})
}

// Invoke executes the request. Structured content types decode the payload
// into the declared shape; raw content types return the body as a string.
// Failures are always *TransportError or *DecodeError, and raw content
// types only ever fail with *TransportError.
func (i *Invocation) Invoke(ctx context.Context) (any, error) {
	req := i.Request()
	start := time.Now()
	resp, err := i.env.transport.Execute(ctx, req)
	if err == nil && resp == nil {
		err = errEmptyResponse
	}
	if err != nil {
		terr := &TransportError{Method: req.Method, URL: req.URL, Err: err}
		i.log(ctx, req, start, slog.String("outcome", string(KindTransport)), slog.Any("err", err))
		return nil, terr
	}
	if !req.Accept.Decode {
		i.log(ctx, req, start, slog.Int("status", resp.Status))
		return string(resp.Body), nil
	}
	v, err := i.body.Decode(resp.Body, i.shape)
	if err != nil {
		derr := &DecodeError{Method: req.Method, URL: req.URL, Reason: err.Error(), Body: resp.Body, Err: err}
		var failure *codec.DecodeFailure
		if errors.As(err, &failure) {
			derr.Path, derr.Reason = failure.Path, failure.Reason
		}
		i.log(ctx, req, start, slog.Int("status", resp.Status), slog.String("outcome", string(KindDecode)), slog.Any("err", err))
		return nil, derr
	}
	i.log(ctx, req, start, slog.Int("status", resp.Status))
	return v, nil
}

func (i *Invocation) log(ctx context.Context, req *request.Request, start time.Time, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.Duration("elapsed", time.Since(start)),
	}, attrs...)
	i.env.logger.LogAttrs(ctx, slog.LevelDebug, "route invoked", attrs...)
}

var errEmptyResponse = errors.New("transport returned no response")

// env is shared by every Invocation of one compiled tree. It is never
// written after New returns.
type env struct {
	transport transport.Transport
	logger    *slog.Logger
}
