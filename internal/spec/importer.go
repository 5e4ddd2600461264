package spec

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/routeclient/internal/codec"
	"github.com/mark3labs/routeclient/internal/route"
)

// BuildOption configures how a route schema is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[string]struct{}
	pathRes     []*regexp.Regexp
	badPatterns []string
	registry    *codec.Registry
}

func tagSet(dst map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if dst == nil {
			dst = make(map[string]struct{}, len(tags))
		}
		dst[t] = struct{}{}
	}
	return dst
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) { c.includeTags = tagSet(c.includeTags, tags) }
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) { c.excludeTags = tagSet(c.excludeTags, tags) }
}

// WithMethods keeps only operations using one of the given HTTP methods,
// matched case-insensitively.
func WithMethods(methods []string) BuildOption {
	return func(c *buildConfig) {
		for _, m := range methods {
			m = strings.ToUpper(strings.TrimSpace(m))
			if m == "" {
				continue
			}
			if c.methods == nil {
				c.methods = make(map[string]struct{}, len(methods))
			}
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the regular expressions. An invalid pattern fails BuildSchema.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				c.badPatterns = append(c.badPatterns, p)
				continue
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// WithContentTypes sets the registry used to map media types to content
// type tags. Defaults to codec.DefaultRegistry().
func WithContentTypes(r *codec.Registry) BuildOption {
	return func(c *buildConfig) { c.registry = r }
}

var methodOrder = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
	http.MethodPatch, http.MethodHead, http.MethodOptions, http.MethodTrace,
}

// BuildSchema converts an OpenAPI v3 document into a route schema. Every
// kept operation becomes one named branch, ordered by path then method.
// Branch names come from operationId, or method_path when it is missing.
//
// Path parameters become captures, query parameters optional queries (list
// queries for array schemas), header parameters headers, and the request
// body a ReqBody in its preferred media type. The leaf takes the media type
// of the first 2xx response; structured responses decode into any, raw ones
// into string. Cookie parameters are not represented.
func BuildSchema(doc *openapi3.T, opts ...BuildOption) (route.Node, error) {
	if doc == nil {
		return nil, &SpecError{Code: InputError, Message: "spec: nil document"}
	}
	cfg := &buildConfig{registry: codec.DefaultRegistry()}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.badPatterns) > 0 {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: invalid path pattern(s): %s", strings.Join(cfg.badPatterns, ", "))}
	}

	var branches []route.NamedBranch
	taken := map[string]bool{}
	for _, p := range slices.Sorted(maps.Keys(doc.Paths)) {
		item := doc.Paths[p]
		if item == nil || !cfg.allowPath(p) {
			continue
		}
		for _, method := range methodOrder {
			op := item.GetOperation(method)
			if op == nil || !cfg.allowMethod(method) || !cfg.allowTags(op.Tags) {
				continue
			}
			pointer := "#/paths/" + escapePointer(p) + "/" + strings.ToLower(method)
			node, err := buildOperation(p, method, item.Parameters, op, cfg.registry)
			if err != nil {
				return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("%s %s: %v", method, p, err), JSONPointer: pointer, Cause: err}
			}
			name := branchName(method, p, op.OperationID)
			if taken[name] {
				base := name
				for i := 2; taken[name]; i++ {
					name = fmt.Sprintf("%s_%d", base, i)
				}
			}
			taken[name] = true
			branches = append(branches, route.Branch(name, node))
		}
	}
	if len(branches) == 0 {
		return nil, &SpecError{Code: ConversionError, Message: "spec: no operations left to import"}
	}
	schema := route.Alternatives(branches...)
	if err := route.Validate(schema); err != nil {
		return nil, &SpecError{Code: ConversionError, Message: err.Error(), Cause: err}
	}
	return schema, nil
}

func (c *buildConfig) allowPath(p string) bool {
	if len(c.pathRes) == 0 {
		return true
	}
	return slices.ContainsFunc(c.pathRes, func(re *regexp.Regexp) bool { return re.MatchString(p) })
}

func (c *buildConfig) allowMethod(m string) bool {
	if len(c.methods) == 0 {
		return true
	}
	_, ok := c.methods[m]
	return ok
}

func (c *buildConfig) allowTags(tags []string) bool {
	has := func(set map[string]struct{}) bool {
		for _, t := range tags {
			if _, ok := set[strings.TrimSpace(t)]; ok {
				return true
			}
		}
		return false
	}
	if len(c.includeTags) > 0 && !has(c.includeTags) {
		return false
	}
	return !has(c.excludeTags)
}

type operationParams struct {
	query  []*openapi3.Parameter
	header []*openapi3.Parameter
}

// mergeParams combines path-level and operation-level parameters, the
// latter taking precedence. Query and header parameters are sorted by name.
func mergeParams(pathLevel, opLevel openapi3.Parameters) operationParams {
	merged := map[string]*openapi3.Parameter{}
	for _, list := range []openapi3.Parameters{pathLevel, opLevel} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			merged[ref.Value.In+":"+ref.Value.Name] = ref.Value
		}
	}
	var out operationParams
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		p := merged[key]
		switch p.In {
		case openapi3.ParameterInQuery:
			out.query = append(out.query, p)
		case openapi3.ParameterInHeader:
			out.header = append(out.header, p)
		}
	}
	return out
}

func buildOperation(path, method string, pathLevel openapi3.Parameters, op *openapi3.Operation, reg *codec.Registry) (route.Node, error) {
	ct, shape, err := responseType(op, reg)
	if err != nil {
		return nil, err
	}
	next := route.Leaf(method, shape, ct)

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		bodyCT, ok := pickContentType(op.RequestBody.Value.Content, reg)
		if !ok {
			return nil, fmt.Errorf("no supported request media type in %v", slices.Sorted(maps.Keys(op.RequestBody.Value.Content)))
		}
		next = route.Body(bodyCT, next)
	}

	params := mergeParams(pathLevel, op.Parameters)
	for _, h := range slices.Backward(params.header) {
		next = route.Head(h.Name, codec.Auto, next)
	}
	for _, q := range slices.Backward(params.query) {
		if q.Schema != nil && q.Schema.Value != nil && q.Schema.Value.Type == openapi3.TypeArray {
			next = route.QueryList(q.Name, codec.Auto, next)
		} else {
			next = route.Query(q.Name, codec.Auto, next)
		}
	}
	return pathTemplate(path, next)
}

// responseType picks the leaf content type and response shape.
func responseType(op *openapi3.Operation, reg *codec.Registry) (codec.ContentType, reflect.Type, error) {
	for _, code := range slices.Sorted(maps.Keys(op.Responses)) {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		ref := op.Responses[code]
		if ref == nil || ref.Value == nil || len(ref.Value.Content) == 0 {
			break
		}
		ct, ok := pickContentType(ref.Value.Content, reg)
		if !ok {
			return "", nil, fmt.Errorf("no supported response media type in %v", slices.Sorted(maps.Keys(ref.Value.Content)))
		}
		return ct, shapeFor(ct, reg), nil
	}
	return codec.PlainText, reflect.TypeFor[string](), nil
}

// pickContentType prefers JSON, then the first media type in sorted order
// that the registry understands.
func pickContentType(content openapi3.Content, reg *codec.Registry) (codec.ContentType, bool) {
	var fallback codec.ContentType
	for _, mt := range slices.Sorted(maps.Keys(content)) {
		ct, ok := reg.ParseContentType(mt)
		if !ok {
			continue
		}
		if ct == codec.JSON {
			return ct, true
		}
		if fallback == "" {
			fallback = ct
		}
	}
	return fallback, fallback != ""
}

func shapeFor(ct codec.ContentType, reg *codec.Registry) reflect.Type {
	if ct == codec.Form {
		return reflect.TypeFor[url.Values]()
	}
	if body, err := reg.Lookup(ct); err == nil && body.Structured() {
		return reflect.TypeFor[any]()
	}
	return reflect.TypeFor[string]()
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// branchName derives a stable identifier for an operation.
func branchName(method, path, operationID string) string {
	if id := strings.TrimSpace(operationID); id != "" {
		return id
	}
	name := strings.ToLower(method) + "_" + strings.Trim(nonIdent.ReplaceAllString(path, "_"), "_")
	return strings.TrimSuffix(name, "_")
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
