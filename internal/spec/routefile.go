package spec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routeclient/internal/codec"
	"github.com/mark3labs/routeclient/internal/route"
)

// RouteFile is the YAML route schema format:
//
//	routes:
//	  - name: getWidget
//	    path: /widgets/{id}
//	    query: [verbose, tag...]
//	    response: json
//	  - name: admin
//	    path: /admin
//	    routes:
//	      - name: health
//	        path: /healthz
//	        response: text
//
// A route with nested routes is a group: its path prefixes every child and
// it may not declare a method, parameters or content types.
type RouteFile struct {
	Routes []RouteSpec `yaml:"routes" validate:"required,min=1,dive"`
}

// RouteSpec is one entry of a route file.
type RouteSpec struct {
	Name     string      `yaml:"name" validate:"required"`
	Method   string      `yaml:"method,omitempty" validate:"omitempty,alpha"`
	Path     string      `yaml:"path,omitempty"` // template such as /files/{dir}/{rest...}
	Query    []string    `yaml:"query,omitempty" validate:"dive,required"`
	Headers  []string    `yaml:"headers,omitempty" validate:"dive,required,printascii,excludes=:"`
	Body     string      `yaml:"body,omitempty"`
	Response string      `yaml:"response,omitempty"` // defaults to json
	Routes   []RouteSpec `yaml:"routes,omitempty" validate:"dive"`
}

var validate = validator.New()

// LoadSchemaFile reads a route file from disk.
func LoadSchemaFile(path string) (route.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", path, err), Location: path, Cause: err}
	}
	schema, err := DecodeSchemaFile(data)
	if err != nil {
		return nil, withLocation(err, path)
	}
	return schema, nil
}

// DecodeSchemaFile parses a route file into a validated route schema.
// Unknown keys are rejected.
func DecodeSchemaFile(data []byte) (route.Node, error) {
	var file RouteFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse route file: %v", err), Cause: err}
	}
	if err := validate.Struct(file); err != nil {
		return nil, &SpecError{Code: ValidationError, Message: fmt.Sprintf("route file: %v", err), Cause: err}
	}
	b := routeFileBuilder{registry: codec.DefaultRegistry()}
	schema, err := b.group(file.Routes, "#/routes")
	if err != nil {
		return nil, err
	}
	if err := route.Validate(schema); err != nil {
		return nil, &SpecError{Code: ValidationError, Message: err.Error(), Cause: err}
	}
	return schema, nil
}

type routeFileBuilder struct {
	registry *codec.Registry
}

func (b routeFileBuilder) group(routes []RouteSpec, pointer string) (route.Node, error) {
	branches := make([]route.NamedBranch, 0, len(routes))
	for i, r := range routes {
		at := fmt.Sprintf("%s/%d", pointer, i)
		node, err := b.entry(r, at)
		if err != nil {
			return nil, err
		}
		branches = append(branches, route.Branch(r.Name, node))
	}
	return route.Alternatives(branches...), nil
}

func (b routeFileBuilder) entry(r RouteSpec, pointer string) (route.Node, error) {
	fail := func(format string, args ...any) error {
		return &SpecError{Code: ValidationError, Message: fmt.Sprintf("route %q: ", r.Name) + fmt.Sprintf(format, args...), JSONPointer: pointer}
	}

	if len(r.Routes) > 0 {
		if r.Method != "" || len(r.Query) > 0 || len(r.Headers) > 0 || r.Body != "" || r.Response != "" {
			return nil, fail("a group may only declare name, path and routes")
		}
		inner, err := b.group(r.Routes, pointer+"/routes")
		if err != nil {
			return nil, err
		}
		node, err := pathTemplate(r.Path, inner)
		if err != nil {
			return nil, fail("%v", err)
		}
		return route.Res(node), nil
	}

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = "GET"
	}
	respName := r.Response
	if respName == "" {
		respName = string(codec.JSON)
	}
	respCT, ok := b.registry.ParseContentType(respName)
	if !ok {
		return nil, fail("unknown response content type %q", respName)
	}
	next := route.Leaf(method, shapeFor(respCT, b.registry), respCT)

	if r.Body != "" {
		bodyCT, ok := b.registry.ParseContentType(r.Body)
		if !ok {
			return nil, fail("unknown body content type %q", r.Body)
		}
		next = route.Body(bodyCT, next)
	}
	for i := len(r.Headers) - 1; i >= 0; i-- {
		next = route.Head(r.Headers[i], codec.Auto, next)
	}
	for i := len(r.Query) - 1; i >= 0; i-- {
		if name, ok := strings.CutSuffix(r.Query[i], "..."); ok {
			next = route.QueryList(name, codec.Auto, next)
		} else {
			next = route.Query(r.Query[i], codec.Auto, next)
		}
	}
	node, err := pathTemplate(r.Path, next)
	if err != nil {
		return nil, fail("%v", err)
	}
	return node, nil
}

// pathTemplate prefixes next with the segments of a path template. {name}
// is a capture and {name...} a capture of all remaining segments.
func pathTemplate(path string, next route.Node) (route.Node, error) {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" {
			continue
		}
		inner, isParam := strings.CutPrefix(seg, "{")
		if isParam {
			inner, isParam = strings.CutSuffix(inner, "}")
		}
		switch {
		case isParam && inner != "" && !strings.ContainsAny(inner, "{}"):
			if name, ok := strings.CutSuffix(inner, "..."); ok {
				next = route.CapAll(name, codec.Auto, next)
			} else {
				next = route.Cap(inner, codec.Auto, next)
			}
		case strings.ContainsAny(seg, "{}"):
			return nil, fmt.Errorf("unsupported path segment %q: a parameter must fill the whole segment", seg)
		default:
			next = route.Lit(seg, next)
		}
	}
	return next, nil
}
