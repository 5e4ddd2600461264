package codec

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type color int

func (c color) String() string { return [...]string{"red", "green"}[c] }

func TestPieces(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name  string
		codec Piece
		in    any
		want  string
	}{
		{"string", String, "abc", "abc"},
		{"int", Int, 42, "42"},
		{"int64", Int64, int64(-7), "-7"},
		{"uint", Uint, uint(9), "9"},
		{"float", Float, 1.5, "1.5"},
		{"bool", Bool, true, "true"},
		{"text", Text, ts, "2024-01-02T03:04:05Z"},
		{"auto string", Auto, "x", "x"},
		{"auto int8", Auto, int8(3), "3"},
		{"auto uint16", Auto, uint16(65535), "65535"},
		{"auto float32", Auto, float32(0.25), "0.25"},
		{"auto bool", Auto, false, "false"},
		{"auto text", Auto, ts, "2024-01-02T03:04:05Z"},
		{"auto stringer", Auto, color(1), "green"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.codec.PathPiece(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			got, err = tt.codec.HeaderString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPieces_TypeMismatch(t *testing.T) {
	_, err := Int.PathPiece("5")
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "int", typeErr.Codec)
	assert.Contains(t, err.Error(), "string")

	_, err = Auto.PathPiece(struct{}{})
	require.ErrorAs(t, err, &typeErr)

	_, err = Auto.PathPiece(nil)
	require.ErrorAs(t, err, &typeErr)
}

func TestPieceFunc(t *testing.T) {
	upper := PieceFunc("upper", func(s string) string { return s + "!" })
	got, err := upper.PathPiece("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!", got)
}

func TestJSONBody(t *testing.T) {
	body, err := DefaultRegistry().Lookup(JSON)
	require.NoError(t, err)
	assert.True(t, body.Structured())
	assert.Equal(t, "application/json", body.MediaType())

	data, err := body.Encode(widget{ID: 5, Name: "foo"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"name":"foo"}`, string(data))

	v, err := body.Decode([]byte(`{"id":5,"name":"foo"}`), reflect.TypeFor[widget]())
	require.NoError(t, err)
	assert.Equal(t, widget{ID: 5, Name: "foo"}, v)
}

func TestJSONBody_DecodeFailures(t *testing.T) {
	body, _ := DefaultRegistry().Lookup(JSON)

	_, err := body.Decode([]byte(`{"id":"five"}`), reflect.TypeFor[widget]())
	var failure *DecodeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "$.id", failure.Path)
	assert.Contains(t, failure.Reason, "string")

	_, err = body.Decode([]byte(`{"id":`), reflect.TypeFor[widget]())
	require.ErrorAs(t, err, &failure)
	assert.NotEmpty(t, failure.Reason)

	_, err = body.Decode([]byte(`{bad`), reflect.TypeFor[widget]())
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Reason, "offset")

	_, err = body.Decode([]byte(`{"id":1} {"id":2}`), reflect.TypeFor[widget]())
	require.ErrorAs(t, err, &failure)
}

func TestYAMLBody(t *testing.T) {
	body, _ := DefaultRegistry().Lookup(YAML)
	v, err := body.Decode([]byte("id: 3\nname: bar\n"), reflect.TypeFor[widget]())
	require.NoError(t, err)
	assert.Equal(t, widget{ID: 3, Name: "bar"}, v)

	_, err = body.Decode([]byte("id: [1, 2]\n"), reflect.TypeFor[widget]())
	var failure *DecodeFailure
	require.ErrorAs(t, err, &failure)
}

func TestFormBody(t *testing.T) {
	body, _ := DefaultRegistry().Lookup(Form)

	data, err := body.Encode(widget{ID: 7, Name: "a b"})
	require.NoError(t, err)
	values, err := url.ParseQuery(string(data))
	require.NoError(t, err)
	assert.Equal(t, "7", values.Get("id"))
	assert.Equal(t, "a b", values.Get("name"))

	data, err = body.Encode(&widget{ID: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), "id=1")

	data, err = body.Encode(url.Values{"k": {"v"}})
	require.NoError(t, err)
	assert.Equal(t, "k=v", string(data))

	_, err = body.Encode(42)
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)

	v, err := body.Decode([]byte("id=9&name=z"), reflect.TypeFor[widget]())
	require.NoError(t, err)
	assert.Equal(t, widget{ID: 9, Name: "z"}, v)

	_, err = body.Decode([]byte("id=nine"), reflect.TypeFor[widget]())
	var failure *DecodeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "id", failure.Path)
}

func TestRawBodies(t *testing.T) {
	reg := DefaultRegistry()
	for _, ct := range []ContentType{PlainText, OctetStream} {
		body, err := reg.Lookup(ct)
		require.NoError(t, err)
		assert.False(t, body.Structured())

		data, err := body.Encode("hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))

		data, err = body.Encode([]byte("bytes"))
		require.NoError(t, err)
		assert.Equal(t, "bytes", string(data))

		_, err = body.Encode(12)
		assert.Error(t, err)

		v, err := body.Decode([]byte("{not json"), nil)
		require.NoError(t, err)
		assert.Equal(t, "{not json", v)
	}
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Lookup("msgpack")
	var unknown *UnknownContentTypeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, ContentType("msgpack"), unknown.ContentType)

	custom := reg.With("msgpack", rawBody{mediaType: "application/msgpack"})
	_, err = custom.Lookup("msgpack")
	require.NoError(t, err)

	// The original registry is untouched.
	_, err = reg.Lookup("msgpack")
	assert.Error(t, err)

	assert.Equal(t, []ContentType{Form, JSON, OctetStream, PlainText, YAML}, reg.ContentTypes())
}

func TestParseContentType(t *testing.T) {
	reg := DefaultRegistry()
	tests := []struct {
		in   string
		want ContentType
		ok   bool
	}{
		{"json", JSON, true},
		{"application/json; charset=utf-8", JSON, true},
		{"application/vnd.api+json", JSON, true},
		{"text/plain", PlainText, true},
		{"text/html", PlainText, true},
		{"application/x-yaml", YAML, true},
		{"application/x-www-form-urlencoded", Form, true},
		{"application/octet-stream", OctetStream, true},
		{"image/png", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := reg.ParseContentType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMediaTypeMatches(t *testing.T) {
	tests := []struct {
		requested, got string
		want           bool
	}{
		{"application/json", "application/json; charset=utf-8", true},
		{"application/json", "application/problem+json", true},
		{"application/json", "text/html", false},
		{"application/yaml", "text/yaml", true},
		{"", "anything/else", true},
		{"*/*", "text/html", true},
		{"text/*", "text/html", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MediaTypeMatches(tt.requested, tt.got), "%s vs %s", tt.requested, tt.got)
	}
}
