package cli

import (
	"errors"
	"strings"
	"testing"
)

const petstore = `openapi: 3.0.0
info:
  title: Pets
  version: '1.0.0'
paths:
  /pets:
    get:
      operationId: listPets
      tags: [read]
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  type: string
    post:
      operationId: createPet
      tags: [write]
      requestBody:
        content:
          application/json:
            schema:
              type: object
      responses:
        '201':
          description: created
`

func TestRoutes_RouteFile(t *testing.T) {
	t.Parallel()
	schema := writeFile(t, "routes.yaml", widgetRoutes)

	stdout, _, err := runRoot(t, "routes", "--schema", schema)
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected a header and 5 routes, got:\n%s", stdout)
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, " ") != "ROUTE METHOD PATH RESPONSE" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	want := []string{
		"getWidget GET /widgets/{id} json",
		"listWidgets GET /widgets?tag={tag...}&limit={limit} json",
		"createWidget POST /widgets json",
		"files GET /files/{path...} text",
		"admin/health GET /admin/healthz text",
	}
	for i, w := range want {
		if got := strings.Join(strings.Fields(lines[i+1]), " "); got != w {
			t.Errorf("line %d: want %q got %q", i+1, w, got)
		}
	}
}

func TestRoutes_OpenAPIFilters(t *testing.T) {
	t.Parallel()
	schema := writeFile(t, "openapi.yaml", petstore)

	stdout, _, err := runRoot(t, "routes", "--schema", schema, "--include-tags", "write")
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	if !strings.Contains(stdout, "createPet") || strings.Contains(stdout, "listPets") {
		t.Fatalf("tag filter not applied:\n%s", stdout)
	}

	stdout, _, err = runRoot(t, "routes", "--schema", schema, "--methods", "get")
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	if !strings.Contains(stdout, "listPets") || strings.Contains(stdout, "createPet") {
		t.Fatalf("method filter not applied:\n%s", stdout)
	}
}

func TestRoutes_SchemaErrors(t *testing.T) {
	t.Parallel()
	schema := writeFile(t, "routes.yaml", "routes:\n  - name: x\n    path: /a{b}\n")

	_, _, err := runRoot(t, "routes", "--schema", schema)
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "schema: ") || !strings.Contains(msg, "Location: "+schema) || !strings.Contains(msg, "Pointer: #/routes/0") {
		t.Fatalf("unexpected message:\n%s", msg)
	}

	schema = writeFile(t, "openapi.yaml", petstore)
	_, _, err = runRoot(t, "routes", "--schema", schema, "--paths", "(")
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "invalid path pattern") {
		t.Fatalf("expected an invalid pattern error, got %v", err)
	}
}
