package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routeclient/internal/route"
	"github.com/mark3labs/routeclient/internal/spec"
)

// Config captures all inputs that influence the routes and call commands
// after merging defaults, config file values, and CLI overrides.
type Config struct {
	Schema      string
	BaseURL     string
	Headers     []string
	Timeout     time.Duration
	IncludeTags []string
	ExcludeTags []string
	Methods     []string
	Paths       []string
	LogLevel    string
	ConfigPath  string
	Verbose     bool

	// Set by the call command only.
	Route string
	Args  []string
	Body  string

	// Set by the export command only.
	Out   string
	Force bool

	DryRun bool
}

func defaultConfig() Config {
	return Config{Timeout: 30 * time.Second, LogLevel: "warn"}
}

// addSchemaFlags registers the flags shared by every command that loads a
// schema.
func addSchemaFlags(flags *pflag.FlagSet) {
	flags.String("schema", "", "Path or URL to a route file or Swagger/OpenAPI document")
	flags.StringSlice("include-tags", nil, "Only import operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Skip operations with these tags")
	flags.StringSlice("methods", nil, "Only import operations using these HTTP methods")
	flags.StringSlice("paths", nil, "Only import operations whose path matches one of these regular expressions")
}

func resolveConfig(cmd *cobra.Command, args []string) (*Config, error) {
	cfg := defaultConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Route = args[0]
	}

	cfg.normalize()
	if err := cfg.validate(cmd.Name()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	strs := map[string]*string{
		"schema":    &cfg.Schema,
		"base-url":  &cfg.BaseURL,
		"log-level": &cfg.LogLevel,
		"body":      &cfg.Body,
		"out":       &cfg.Out,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	lists := map[string]*[]string{
		"include-tags": &cfg.IncludeTags,
		"exclude-tags": &cfg.ExcludeTags,
		"methods":      &cfg.Methods,
		"paths":        &cfg.Paths,
	}
	for name, dst := range lists {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	arrays := map[string]*[]string{
		"header": &cfg.Headers,
		"arg":    &cfg.Args,
	}
	for name, dst := range arrays {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringArray(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	bools := map[string]*bool{
		"verbose": &cfg.Verbose,
		"dry-run": &cfg.DryRun,
		"force":   &cfg.Force,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}
	return nil
}

func (c *Config) normalize() {
	c.Schema = strings.TrimSpace(c.Schema)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Route = strings.Trim(strings.TrimSpace(c.Route), "/")
	c.Out = strings.TrimSpace(c.Out)
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.Methods = sanitizeList(c.Methods)
	c.Paths = sanitizeList(c.Paths)
	if c.Verbose {
		c.LogLevel = "debug"
	}
}

func (c *Config) validate(command string) error {
	if c.Schema == "" {
		return newUsageError(fmt.Sprintf("%s: --schema is required (set via flag or config file)", command))
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return newUsageError(fmt.Sprintf("%s: unsupported --log-level %q (allowed: debug, info, warn, error)", command, c.LogLevel))
	}
	if c.Timeout < 0 {
		return newUsageError(fmt.Sprintf("%s: --timeout must not be negative", command))
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("%s: include/exclude tags overlap: %s", command, strings.Join(overlap, ", ")))
	}
	switch command {
	case "call":
		if c.Route == "" {
			return newUsageError("call: a route such as admin/health is required")
		}
		if c.BaseURL == "" && !c.DryRun {
			return newUsageError("call: --base-url is required unless --dry-run is set")
		}
	case "export":
		if c.Out == "" {
			return newUsageError("export: --out is required")
		}
	}
	for _, h := range c.Headers {
		if _, _, err := parseHeader(h); err != nil {
			return newUsageError(fmt.Sprintf("%s: %v", command, err))
		}
	}
	return nil
}

func (c *Config) loadOptions() []spec.Option {
	return []spec.Option{spec.WithBuild(
		spec.WithIncludeTags(c.IncludeTags),
		spec.WithExcludeTags(c.ExcludeTags),
		spec.WithMethods(c.Methods),
		spec.WithPathPatterns(c.Paths),
	)}
}

func loadSchema(ctx context.Context, cfg *Config) (route.Node, error) {
	schema, err := spec.LoadAny(ctx, cfg.Schema, cfg.loadOptions()...)
	if err != nil {
		return nil, schemaError(err)
	}
	return schema, nil
}

// parseHeader splits a curl style "Name: value" header.
func parseHeader(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("invalid header %q (want \"Name: value\")", raw)
	}
	return name, strings.TrimSpace(value), nil
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "schema":
			cfg.Schema, err = valueAsString(value)
		case "baseurl":
			cfg.BaseURL, err = valueAsString(value)
		case "headers":
			cfg.Headers, err = valueAsHeaders(value)
		case "timeout":
			cfg.Timeout, err = valueAsDuration(value)
		case "includetags":
			cfg.IncludeTags, err = valueAsStringSlice(value)
		case "excludetags":
			cfg.ExcludeTags, err = valueAsStringSlice(value)
		case "methods":
			cfg.Methods, err = valueAsStringSlice(value)
		case "paths":
			cfg.Paths, err = valueAsStringSlice(value)
		case "loglevel":
			cfg.LogLevel, err = valueAsString(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

// valueAsHeaders accepts a mapping of names to values, a single
// "Name: value" string or a list of them.
func valueAsHeaders(v any) ([]string, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make([]string, 0, len(val))
		for name, raw := range val {
			value, err := valueAsString(raw)
			if err != nil {
				return nil, fmt.Errorf("header %q: %w", name, err)
			}
			out = append(out, name+": "+value)
		}
		return sanitizeList(out), nil
	case string:
		// Header values may contain commas.
		return sanitizeList([]string{val}), nil
	default:
		return valueAsStringSlice(v)
	}
}

func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", val)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
