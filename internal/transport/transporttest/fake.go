// Package transporttest provides an in-memory transport for tests.
package transporttest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/mark3labs/routeclient/internal/request"
	"github.com/mark3labs/routeclient/internal/transport"
)

// Reply is one queued outcome: a response or an error.
type Reply struct {
	Response *transport.Response
	Err      error
}

// Fake implements transport.Transport without any network access. It
// replays queued replies in order, or answers every request with a handler.
// It is safe for concurrent use.
type Fake struct {
	t       testing.TB
	mu      sync.Mutex
	replies []Reply
	handler func(*request.Request) (*transport.Response, error)
	reqs    []*request.Request
}

// NewFake returns a Fake seeded with the replies for successive requests.
func NewFake(t testing.TB, replies ...Reply) *Fake {
	return &Fake{t: t, replies: append([]Reply(nil), replies...)}
}

// NewHandlerFake returns a Fake that answers every request with fn.
func NewHandlerFake(t testing.TB, fn func(*request.Request) (*transport.Response, error)) *Fake {
	return &Fake{t: t, handler: fn}
}

// Execute records req and returns the next reply.
func (f *Fake) Execute(ctx context.Context, req *request.Request) (*transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	if f.handler != nil {
		fn := f.handler
		f.mu.Unlock()
		return fn(req)
	}
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		f.t.Errorf("fake transport has no replies left for %s %s", req.Method, req.URL)
		return nil, fmt.Errorf("transporttest: no reply for %s %s", req.Method, req.URL)
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.Response, r.Err
}

// Requests returns the requests captured so far.
func (f *Fake) Requests() []*request.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*request.Request(nil), f.reqs...)
}

// Last returns the most recent request, or nil.
func (f *Fake) Last() *request.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reqs) == 0 {
		return nil
	}
	return f.reqs[len(f.reqs)-1]
}

// OK is a 200 reply carrying body.
func OK(body string) Reply {
	return Status(http.StatusOK, body)
}

// Status is a reply with the given status code and body.
func Status(code int, body string) Reply {
	return Reply{Response: &transport.Response{Status: code, Header: make(http.Header), Body: []byte(body)}}
}

// Fail is a reply that reports err.
func Fail(err error) Reply {
	return Reply{Err: err}
}

var _ transport.Transport = (*Fake)(nil)
