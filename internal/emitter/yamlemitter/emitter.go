package yamlemitter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routeclient/internal/route"
	"github.com/mark3labs/routeclient/internal/spec"
)

// File names written into the output directory.
const (
	RoutesFile = "routes.yaml"
	ConfigFile = "routeclient.yaml"
)

// Options controls how a schema is exported.
type Options struct {
	OutDir  string // required; target directory
	Source  string // recorded in the route file header when set
	BaseURL string // written to the generated config when set
	Force   bool   // overwrite a non-empty directory
	DryRun  bool   // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and how many routes were exported.
type Result struct {
	Routes  int
	Planned []PlannedFile
}

// Emit writes schema as a route file plus a CLI config that points at it.
func Emit(ctx context.Context, schema route.Node, opts Options) (*Result, error) {
	_ = ctx
	if schema == nil {
		return nil, fmt.Errorf("yamlemitter: nil schema")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("yamlemitter: OutDir is required")
	}
	absOut, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve out dir: %w", err)
	}

	routes, err := spec.EncodeSchemaFile(schema)
	if err != nil {
		return nil, err
	}
	header := "# Route file exported by routeclient.\n"
	if opts.Source != "" {
		header += "# Source: " + opts.Source + "\n"
	}

	config, err := renderConfig(filepath.Join(absOut, RoutesFile), opts.BaseURL)
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{
		RoutesFile: append([]byte(header), routes...),
		ConfigFile: config,
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(absOut, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{Routes: len(route.Leaves(schema)), Planned: planned}, nil
}

// renderConfig produces a CLI config file that loads the exported routes.
func renderConfig(routesPath, baseURL string) ([]byte, error) {
	cfg := struct {
		Schema  string `yaml:"schema"`
		BaseURL string `yaml:"baseUrl,omitempty"`
	}{Schema: routesPath, BaseURL: strings.TrimSpace(baseURL)}

	var buf bytes.Buffer
	buf.WriteString("# routeclient configuration. Use with: routeclient --config " + ConfigFile + " call <route>\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFiles(abs string, files map[string][]byte, force bool) error {
	// Pre-flight: if directory exists and not empty and not force, error.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("yamlemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
