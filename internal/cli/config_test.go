package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestCallConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`schema: config-routes.yaml
base-url: http://config.example
headers:
  Authorization: Bearer cfg
timeout: 5s
includeTags:
  - cfgFoo
excludeTags: cfgBar
methods: get, post
log_level: info
verbose: false
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *Config
	callRunner = func(ctx context.Context, cfg *Config, _ streams) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { callRunner = runCall })

	root.SetArgs([]string{
		"--config", configPath,
		"call", "/admin/health/",
		"--schema", "flag-routes.yaml",
		"--include-tags", "flagTag",
		"--arg", "id=1",
		"--arg", "id=2",
		"--timeout", "2s",
		"--dry-run",
		"--verbose",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Schema != "flag-routes.yaml" {
		t.Errorf("schema: want %q got %q", "flag-routes.yaml", captured.Schema)
	}
	if captured.BaseURL != "http://config.example" {
		t.Errorf("base url: got %q", captured.BaseURL)
	}
	if want := []string{"Authorization: Bearer cfg"}; !slices.Equal(captured.Headers, want) {
		t.Errorf("headers: want %v got %v", want, captured.Headers)
	}
	if captured.Timeout != 2*time.Second {
		t.Errorf("timeout: want 2s got %v", captured.Timeout)
	}
	if want := []string{"flagTag"}; !slices.Equal(captured.IncludeTags, want) {
		t.Errorf("include tags: want %v got %v", want, captured.IncludeTags)
	}
	if want := []string{"cfgBar"}; !slices.Equal(captured.ExcludeTags, want) {
		t.Errorf("exclude tags: want %v got %v", want, captured.ExcludeTags)
	}
	if want := []string{"get", "post"}; !slices.Equal(captured.Methods, want) {
		t.Errorf("methods: want %v got %v", want, captured.Methods)
	}
	if want := []string{"id=1", "id=2"}; !slices.Equal(captured.Args, want) {
		t.Errorf("args: want %v got %v", want, captured.Args)
	}
	if captured.Route != "admin/health" {
		t.Errorf("route: got %q", captured.Route)
	}
	if !captured.DryRun {
		t.Errorf("expected dry-run from flag")
	}
	if !captured.Verbose || captured.LogLevel != "debug" {
		t.Errorf("expected --verbose to force debug logging, got %v/%q", captured.Verbose, captured.LogLevel)
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestConfigUnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", configPath, "routes", "--schema", "routes.yaml"})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"routes without schema", []string{"routes"}, "routes: --schema is required"},
		{"call without base url", []string{"call", "x", "--schema", "r.yaml"}, "--base-url is required unless --dry-run"},
		{"bad log level", []string{"routes", "--schema", "r.yaml", "--log-level", "loud"}, `unsupported --log-level "loud"`},
		{"tag overlap", []string{"routes", "--schema", "r.yaml", "--include-tags", "a,b", "--exclude-tags", "b"}, "overlap: b"},
		{"bad header", []string{"call", "x", "--schema", "r.yaml", "--dry-run", "--header", "NoColon"}, `invalid header "NoColon"`},
		{"negative timeout", []string{"call", "x", "--schema", "r.yaml", "--dry-run", "--timeout=-1s"}, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := runRoot(t, tt.args...)
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConfigValues(t *testing.T) {
	t.Parallel()

	headers, err := valueAsHeaders([]any{"A: 1", "B: 2"})
	if err != nil || !slices.Equal(headers, []string{"A: 1", "B: 2"}) {
		t.Fatalf("header list: %v %v", headers, err)
	}
	headers, err = valueAsHeaders("Accept: a, b")
	if err != nil || !slices.Equal(headers, []string{"Accept: a, b"}) {
		t.Fatalf("single header: %v %v", headers, err)
	}
	if _, err := valueAsHeaders(map[string]any{"A": []any{"x"}}); err == nil {
		t.Fatalf("expected an error for a non-string header value")
	}

	for raw, want := range map[any]time.Duration{"1m": time.Minute, 10: 10 * time.Second, nil: 0} {
		got, err := valueAsDuration(raw)
		if err != nil || got != want {
			t.Errorf("duration %v: want %v got %v (%v)", raw, want, got, err)
		}
	}
	if _, err := valueAsDuration("soon"); err == nil {
		t.Fatalf("expected an invalid duration error")
	}

	if _, err := valueAsBool("maybe"); err == nil {
		t.Fatalf("expected an invalid boolean error")
	}
	if got := normalizeKey(" Base_URL "); got != "baseurl" {
		t.Fatalf("normalizeKey: got %q", got)
	}

	name, value, err := parseHeader("X-Trace:  abc ")
	if err != nil || name != "X-Trace" || value != "abc" {
		t.Fatalf("parseHeader: %q %q %v", name, value, err)
	}
}
