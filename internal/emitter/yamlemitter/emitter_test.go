package yamlemitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routeclient/internal/codec"
	"github.com/mark3labs/routeclient/internal/route"
	"github.com/mark3labs/routeclient/internal/spec"
)

func sampleSchema() route.Node {
	return route.Alternatives(
		route.Branch("getWidget", route.Lit("widgets", route.Cap("id", codec.Int, route.Get[any](codec.JSON)))),
		route.Branch("admin", route.Lit("admin", route.Alternatives(
			route.Branch("health", route.Lit("healthz", route.Get[string](codec.PlainText))),
		))),
	)
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), sampleSchema(), Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Routes != 2 {
		t.Fatalf("expected 2 routes, got %d", res.Routes)
	}
	if len(res.Planned) != 2 || res.Planned[0].RelPath != ConfigFile || res.Planned[1].RelPath != RoutesFile {
		t.Fatalf("unexpected plan: %+v", res.Planned)
	}
	for _, pf := range res.Planned {
		if pf.Size == 0 {
			t.Fatalf("planned empty file %s", pf.RelPath)
		}
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected no files written on dry-run")
	}
}

func TestEmit_WriteAndContents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := Emit(context.Background(), sampleSchema(), Options{
		OutDir:  dir,
		Source:  "widgets.yaml",
		BaseURL: "http://widgets.example",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	routesPath := filepath.Join(dir, RoutesFile)
	data, err := os.ReadFile(routesPath)
	if err != nil {
		t.Fatalf("read routes: %v", err)
	}
	if !strings.Contains(string(data), "# Source: widgets.yaml\n") {
		t.Fatalf("routes file missing source header:\n%s", data)
	}
	schema, err := spec.LoadSchemaFile(routesPath)
	if err != nil {
		t.Fatalf("exported routes do not load: %v", err)
	}
	if n := len(route.Leaves(schema)); n != 2 {
		t.Fatalf("expected 2 routes, got %d", n)
	}

	raw, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var cfg map[string]string
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("config invalid: %v", err)
	}
	if cfg["schema"] != routesPath || cfg["baseUrl"] != "http://widgets.example" {
		t.Fatalf("unexpected config: %v", cfg)
	}
}

func TestEmit_NoForce_NonEmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	if _, err := Emit(context.Background(), sampleSchema(), Options{OutDir: dir}); err == nil {
		t.Fatalf("expected error on non-empty dir without force")
	}
	if _, err := Emit(context.Background(), sampleSchema(), Options{OutDir: dir, Force: true}); err != nil {
		t.Fatalf("emit with force: %v", err)
	}
}

func TestEmit_Errors(t *testing.T) {
	t.Parallel()
	if _, err := Emit(context.Background(), nil, Options{OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for nil schema")
	}
	if _, err := Emit(context.Background(), sampleSchema(), Options{}); err == nil {
		t.Fatalf("expected error for missing OutDir")
	}
	if _, err := Emit(context.Background(), route.Get[string](codec.PlainText), Options{OutDir: t.TempDir(), DryRun: true}); err == nil {
		t.Fatalf("expected error for an unnamed leaf")
	}
}
