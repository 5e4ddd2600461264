package route

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/routeclient/internal/codec"
)

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func widgetAPI() Node {
	return Alternatives(
		Branch("getWidget", Lit("widgets", Cap("id", codec.Int, Get[widget](codec.JSON)))),
		Branch("listWidgets", Lit("widgets",
			QueryList("tag", codec.String, Query("limit", codec.Int, Get[[]widget](codec.JSON))))),
		Branch("createWidget", Lit("widgets",
			Head("X-Request-Id", codec.String, Body(codec.JSON, Post[widget](codec.JSON))))),
		Branch("files", Lit("files", CapAll("path", codec.String, Get[string](codec.PlainText)))),
		Branch("admin", Res(Lit("admin", Alternatives(
			Branch("health", Lit("healthz", Get[string](codec.PlainText))),
			Branch("reset", Lit("reset", Delete[struct{}](codec.JSON))),
		)))),
	)
}

func schemaErrors(t *testing.T, err error) []*SchemaError {
	t.Helper()
	require.Error(t, err)
	var out []*SchemaError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			var se *SchemaError
			require.True(t, errors.As(e, &se), "unexpected error %T: %v", e, e)
			out = append(out, se)
		}
	}
	return out
}

func TestValidate_WellFormed(t *testing.T) {
	require.NoError(t, Validate(widgetAPI()))
	require.NoError(t, Validate(Get[string](codec.PlainText)))
	require.NoError(t, Validate(Cap("id", codec.Int, Get[widget](codec.JSON))))
}

func TestValidate_DuplicateNames(t *testing.T) {
	schema := Alternatives(
		Branch("a", Get[string](codec.PlainText)),
		Branch("b", Get[string](codec.PlainText)),
		Branch("a", Post[string](codec.PlainText)),
	)
	errs := schemaErrors(t, Validate(schema))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `duplicate branch name "a"`)
}

func TestValidate_DuplicateNamesBehindWrappers(t *testing.T) {
	schema := Alt("a", Get[string](codec.PlainText),
		Res(Lit("v2", Alternatives(
			Branch("a", Get[string](codec.PlainText)),
		))))
	errs := schemaErrors(t, Validate(schema))
	require.Len(t, errs, 1)
	assert.Equal(t, "v2", errs[0].Path)
}

func TestValidate_SameNameAtDifferentLevels(t *testing.T) {
	schema := Alternatives(
		Branch("a", Alternatives(Branch("a", Get[string](codec.PlainText)))),
		Branch("b", Get[string](codec.PlainText)),
	)
	require.NoError(t, Validate(schema))
}

func TestValidate_RestMustBeNamed(t *testing.T) {
	schema := Alt("a", Get[string](codec.PlainText), Cap("id", codec.Int, Get[string](codec.PlainText)))
	errs := schemaErrors(t, Validate(schema))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "continues with Capture")
}

func TestValidate_FieldChecks(t *testing.T) {
	tests := []struct {
		name   string
		schema Node
		want   string
	}{
		{"empty literal", Lit("", Get[string](codec.PlainText)), "Literal.Segment is required"},
		{"slash literal", Lit("a/b", Get[string](codec.PlainText)), `Literal.Segment must not contain "/"`},
		{"empty branch name", Alt("", Get[string](codec.PlainText), nil), "Alternative.Name is required"},
		{"empty method", Leaf("", reflect.TypeFor[string](), codec.PlainText), "MethodLeaf.Method is required"},
		{"bad method", Leaf("GET /x", reflect.TypeFor[string](), codec.PlainText), "letters only"},
		{"no content type", Leaf("GET", reflect.TypeFor[string](), ""), "MethodLeaf.ContentType is required"},
		{"bad header", Head("X:Y", codec.String, Get[string](codec.PlainText)), "Header.Name"},
		{"no codec", Cap("id", nil, Get[string](codec.PlainText)), `Capture "id" has no codec`},
		{"no response", Leaf("GET", nil, codec.JSON), "has no response type"},
		{"missing next", Lit("x", nil), "missing node"},
		{"nil root", nil, "missing node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	schema := Alternatives(
		Branch("a", Lit("", Get[string](codec.PlainText))),
		Branch("a", Cap("id", nil, Get[string](codec.PlainText))),
	)
	errs := schemaErrors(t, Validate(schema))
	assert.Len(t, errs, 3)
}

func TestIsNamed(t *testing.T) {
	assert.True(t, IsNamed(widgetAPI()))
	assert.True(t, IsNamed(Res(Lit("x", Alternatives(Branch("a", Get[string](codec.JSON)))))))
	assert.False(t, IsNamed(Get[string](codec.JSON)))
	assert.False(t, IsNamed(nil))
}

func TestLeaves(t *testing.T) {
	leaves := Leaves(widgetAPI())
	require.Len(t, leaves, 6)

	assert.Equal(t, []string{"getWidget"}, leaves[0].Branch)
	assert.Equal(t, "GET", leaves[0].Method)
	assert.Equal(t, "/widgets/{id}", leaves[0].Template)
	assert.Equal(t, []Param{{Kind: ParamCapture, Name: "id"}}, leaves[0].Params)
	assert.Equal(t, reflect.TypeFor[widget](), leaves[0].Response)

	assert.Equal(t, "/widgets?tag={tag...}&limit={limit}", leaves[1].Template)
	assert.Equal(t, []Param{{Kind: ParamQueryList, Name: "tag"}, {Kind: ParamQuery, Name: "limit"}}, leaves[1].Params)

	assert.Equal(t, "POST", leaves[2].Method)
	assert.Equal(t, []Param{{Kind: ParamHeader, Name: "X-Request-Id"}, {Kind: ParamBody, Name: "json"}}, leaves[2].Params)

	assert.Equal(t, "/files/{path...}", leaves[3].Template)
	assert.Equal(t, codec.PlainText, leaves[3].ContentType)

	assert.Equal(t, []string{"admin", "health"}, leaves[4].Branch)
	assert.Equal(t, "/admin/healthz", leaves[4].Template)
	assert.Equal(t, []string{"admin", "reset"}, leaves[5].Branch)
	assert.Equal(t, "DELETE", leaves[5].Method)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "CaptureAll", KindCaptureAll.String())
	assert.Equal(t, "Kind(?)", Kind(99).String())
	assert.Equal(t, "queryList", ParamQueryList.String())
	assert.True(t, ParamCaptureAll.Multi())
	assert.False(t, ParamHeader.Multi())
}
