// Package transport executes finalized requests. The client package only
// depends on the Transport interface; HTTP is the implementation shipped
// here.
package transport

import (
	"context"
	"net/http"

	"github.com/mark3labs/routeclient/internal/request"
)

// Response is a completed exchange.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport performs one request. A non-nil error means no usable response
// was obtained: connection failures, non-success statuses and responses in
// the wrong format all surface here.
type Transport interface {
	Execute(ctx context.Context, req *request.Request) (*Response, error)
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, req *request.Request) (*Response, error)

func (f Func) Execute(ctx context.Context, req *request.Request) (*Response, error) {
	return f(ctx, req)
}
