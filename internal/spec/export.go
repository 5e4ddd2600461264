package spec

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routeclient/internal/codec"
	"github.com/mark3labs/routeclient/internal/route"
)

// ExportRoutes converts a schema into the route file format. Every leaf must
// sit under at least one named branch.
//
// The conversion keeps branch names, methods, paths and content types.
// Parameters are listed in path, query, header, body order and every codec
// becomes auto, so the exported file describes the same requests but not
// necessarily the same argument order.
func ExportRoutes(schema route.Node) (*RouteFile, error) {
	if err := route.Validate(schema); err != nil {
		return nil, &SpecError{Code: ValidationError, Message: err.Error(), Cause: err}
	}
	var file RouteFile
	for _, leaf := range route.Leaves(schema) {
		if len(leaf.Branch) == 0 {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("export: %s %s has no branch name", leaf.Method, leaf.Template)}
		}
		entry := RouteSpec{
			Name: leaf.Branch[len(leaf.Branch)-1],
			Path: strings.SplitN(leaf.Template, "?", 2)[0],
		}
		if leaf.Method != http.MethodGet {
			entry.Method = strings.ToLower(leaf.Method)
		}
		if leaf.ContentType != codec.JSON {
			entry.Response = string(leaf.ContentType)
		}
		for _, p := range leaf.Params {
			switch p.Kind {
			case route.ParamQuery:
				entry.Query = append(entry.Query, p.Name)
			case route.ParamQueryList:
				entry.Query = append(entry.Query, p.Name+"...")
			case route.ParamHeader:
				entry.Headers = append(entry.Headers, p.Name)
			case route.ParamBody:
				entry.Body = p.Name
			}
		}
		file.Routes = insertRoute(file.Routes, leaf.Branch[:len(leaf.Branch)-1], entry)
	}
	return &file, nil
}

// insertRoute places entry under the groups named by parents, creating them
// in first-seen order.
func insertRoute(routes []RouteSpec, parents []string, entry RouteSpec) []RouteSpec {
	if len(parents) == 0 {
		return append(routes, entry)
	}
	for i := range routes {
		if routes[i].Name == parents[0] && len(routes[i].Routes) > 0 {
			routes[i].Routes = insertRoute(routes[i].Routes, parents[1:], entry)
			return routes
		}
	}
	group := RouteSpec{Name: parents[0]}
	group.Routes = insertRoute(nil, parents[1:], entry)
	return append(routes, group)
}

// EncodeSchemaFile renders schema as route file YAML that DecodeSchemaFile
// reads back.
func EncodeSchemaFile(schema route.Node) ([]byte, error) {
	file, err := ExportRoutes(schema)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("export: encode route file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("export: encode route file: %w", err)
	}
	return buf.Bytes(), nil
}
