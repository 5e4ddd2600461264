package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize_PathAndQuery(t *testing.T) {
	b := Empty().AppendSegment("a").AppendSegment("b").AppendSegment("c")

	req := b.AppendQuery("q1", "v1").Finalize("GET", Accept{})
	assert.Equal(t, "/a/b/c?q1=v1", req.URL)
	assert.Equal(t, "GET", req.Method)

	req = b.Finalize("GET", Accept{})
	assert.Equal(t, "/a/b/c", req.URL)
}

func TestFinalize_Empty(t *testing.T) {
	req := Empty().Finalize("DELETE", Accept{})
	assert.Equal(t, "/", req.URL)
	assert.Nil(t, req.Body)
	assert.Empty(t, req.Header)
}

func TestFinalize_MultipleQueryPairs(t *testing.T) {
	req := Empty().
		AppendSegment("search").
		AppendQuery("tag", "x").
		AppendQuery("tag", "y").
		AppendQuery("limit", "3").
		Finalize("GET", Accept{})
	assert.Equal(t, "/search?tag=x&tag=y&limit=3", req.URL)
}

func TestFinalize_NoEscaping(t *testing.T) {
	req := Empty().AppendSegment("a b").AppendQuery("q", "x&y").Finalize("GET", Accept{})
	assert.Equal(t, "/a b?q=x&y", req.URL)
}

func TestBuilder_BranchesDoNotShareStorage(t *testing.T) {
	base := Empty().AppendSegment("root").AppendSegment("mid")
	// Force spare capacity in the shared prefix.
	base.path = append(make([]string, 0, 8), base.path...)

	left := base.AppendSegment("left")
	right := base.AppendSegment("right")

	assert.Equal(t, []string{"root", "mid", "left"}, left.Path())
	assert.Equal(t, []string{"root", "mid", "right"}, right.Path())
	assert.Equal(t, []string{"root", "mid"}, base.Path())

	lq := base.AppendQuery("a", "1")
	rq := base.AppendQuery("b", "2")
	assert.Equal(t, []Pair{{"a", "1"}}, lq.Query())
	assert.Equal(t, []Pair{{"b", "2"}}, rq.Query())
}

func TestBuilder_HeadersNewestFirst(t *testing.T) {
	b := Empty().AppendHeader("X-One", "1").AppendHeader("X-Two", "2")
	assert.Equal(t, []Pair{{"X-Two", "2"}, {"X-One", "1"}}, b.Header())
}

func TestAppendContent_SingleContentType(t *testing.T) {
	b := Empty().
		AppendHeader("X-Before", "b").
		AppendContent([]byte(`{"a":1}`), "application/json").
		AppendHeader("X-After", "a")

	req := b.Finalize("POST", Accept{})
	require.NotNil(t, req.Body)
	assert.Equal(t, `{"a":1}`, string(req.Body.Payload))
	assert.Equal(t, "application/json", req.Body.MediaType)
	assert.Equal(t, []string{"application/json"}, req.HeaderValues("Content-Type"))

	v, ok := req.HeaderValue("x-before")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	v, ok = req.HeaderValue("X-After")
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestAppendContent_LastWins(t *testing.T) {
	b := Empty().
		AppendContent([]byte("first"), "text/plain").
		AppendContent([]byte(`"second"`), "application/json")

	req := b.Finalize("PUT", Accept{})
	assert.Equal(t, `"second"`, string(req.Body.Payload))
	assert.Equal(t, []string{"application/json"}, req.HeaderValues("Content-Type"))
}

func TestAppendContent_ReplacesDeclaredContentType(t *testing.T) {
	req := Empty().
		AppendHeader("content-type", "text/csv").
		AppendHeader("X-Keep", "1").
		AppendContent([]byte(`{}`), "application/json").
		Finalize("POST", Accept{})

	assert.Equal(t, []string{"application/json"}, req.HeaderValues("Content-Type"))
	v, ok := req.HeaderValue("X-Keep")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestAppendContent_NoMediaType(t *testing.T) {
	req := Empty().AppendContent([]byte("raw"), "").Finalize("POST", Accept{})
	require.NotNil(t, req.Body)
	_, ok := req.HeaderValue("Content-Type")
	assert.False(t, ok)
}

func TestBuilder_AccessorsReturnCopies(t *testing.T) {
	b := Empty().AppendSegment("a").AppendContent([]byte("x"), "text/plain")
	p := b.Path()
	p[0] = "mutated"
	body := b.Body()
	body.MediaType = "mutated"

	assert.Equal(t, []string{"a"}, b.Path())
	assert.Equal(t, "text/plain", b.Body().MediaType)
}

func TestFinalize_CarriesAccept(t *testing.T) {
	accept := Accept{MediaType: "application/json", Decode: true}
	req := Empty().Finalize("GET", accept)
	assert.Equal(t, accept, req.Accept)
}
