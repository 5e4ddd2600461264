// Package codec provides the value conversions a compiled route needs:
// path/query pieces, header strings and request/response bodies.
package codec

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
)

// PathCodec renders a captured or query value as a single string piece.
type PathCodec interface {
	PathPiece(v any) (string, error)
}

// HeaderCodec renders a header value.
type HeaderCodec interface {
	HeaderString(v any) (string, error)
}

// Piece is both a PathCodec and a HeaderCodec; every builtin is a Piece.
type Piece interface {
	PathCodec
	HeaderCodec
}

// TypeError reports a value whose dynamic type the codec does not handle.
type TypeError struct {
	Codec string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("codec %s: unsupported value of type %T", e.Codec, e.Value)
}

type pieceFunc struct {
	name string
	fn   func(any) (string, error)
}

func (p pieceFunc) PathPiece(v any) (string, error)    { return p.fn(v) }
func (p pieceFunc) HeaderString(v any) (string, error) { return p.fn(v) }
func (p pieceFunc) String() string                     { return p.name }

// PieceFunc adapts a typed conversion into a Piece. Values of any other
// dynamic type are rejected with a *TypeError.
func PieceFunc[T any](name string, fn func(T) string) Piece {
	return pieceFunc{name: name, fn: func(v any) (string, error) {
		t, ok := v.(T)
		if !ok {
			return "", &TypeError{Codec: name, Value: v}
		}
		return fn(t), nil
	}}
}

// Builtin pieces.
var (
	String = PieceFunc("string", func(s string) string { return s })
	Int    = PieceFunc("int", strconv.Itoa)
	Int64  = PieceFunc("int64", func(i int64) string { return strconv.FormatInt(i, 10) })
	Uint   = PieceFunc("uint", func(u uint) string { return strconv.FormatUint(uint64(u), 10) })
	Float  = PieceFunc("float64", func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) })
	Bool   = PieceFunc("bool", strconv.FormatBool)

	// Text accepts any encoding.TextMarshaler.
	Text Piece = pieceFunc{name: "text", fn: textPiece}

	// Auto accepts strings, every integer, float and bool kind, and values
	// implementing encoding.TextMarshaler or fmt.Stringer.
	Auto Piece = pieceFunc{name: "auto", fn: autoPiece}
)

func textPiece(v any) (string, error) {
	tm, ok := v.(encoding.TextMarshaler)
	if !ok {
		return "", &TypeError{Codec: "text", Value: v}
	}
	b, err := tm.MarshalText()
	if err != nil {
		return "", fmt.Errorf("codec text: %w", err)
	}
	return string(b), nil
}

func autoPiece(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case encoding.TextMarshaler:
		return textPiece(t)
	case fmt.Stringer:
		return t.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	}
	return "", &TypeError{Codec: "auto", Value: v}
}
