package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/routeclient/internal/client"
	"github.com/mark3labs/routeclient/internal/codec"
	"github.com/mark3labs/routeclient/internal/request"
	"github.com/mark3labs/routeclient/internal/route"
	"github.com/mark3labs/routeclient/internal/transport"
)

var callRunner = runCall

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <route>",
		Short: "Invoke one route of a schema",
		Long: "Invoke one route of a schema. The route is the slash separated branch path " +
			"printed by the routes command. Path captures, query parameters and headers " +
			"declared by the route are supplied with --arg; repeat --arg for list parameters.",
		Example: strings.TrimSpace(`  routeclient call getWidget --schema routes.yaml --base-url http://localhost:8080 --arg id=42
  routeclient call createWidget --schema routes.yaml --base-url http://localhost:8080 --body @widget.json --dry-run`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			return callRunner(cmd.Context(), cfg, cmdStreams(cmd))
		},
	}

	flags := cmd.Flags()
	addSchemaFlags(flags)
	flags.String("base-url", "", "Absolute http(s) URL every route is relative to")
	flags.StringArray("arg", nil, "Route argument as name=value (repeatable)")
	flags.StringArray("header", nil, "Extra header sent with the request as \"Name: value\" (repeatable)")
	flags.String("body", "", "Request body, or @file to read it from a file")
	flags.Duration("timeout", 0, "Request timeout (default 30s)")
	flags.Bool("dry-run", false, "Print the request instead of sending it")
	return cmd
}

// invokeError prints invocation failures the way client.Render does.
type invokeError struct {
	route string
	err   error
}

func (e *invokeError) Error() string { return fmt.Sprintf("call %s: %s", e.route, client.Render(e.err)) }
func (e *invokeError) Unwrap() error { return e.err }

func runCall(ctx context.Context, cfg *Config, s streams) error {
	schema, err := loadSchema(ctx, cfg)
	if err != nil {
		return err
	}
	logger := newLogger(s.err, cfg.LogLevel)

	var t transport.Transport = transport.Func(func(context.Context, *request.Request) (*transport.Response, error) {
		return nil, errors.New("dry run")
	})
	if cfg.BaseURL != "" {
		opts := []transport.HTTPOption{transport.WithTimeout(cfg.Timeout)}
		for _, h := range cfg.Headers {
			name, value, _ := parseHeader(h)
			opts = append(opts, transport.WithHeader(name, value))
		}
		h, err := transport.NewHTTP(cfg.BaseURL, opts...)
		if err != nil {
			return newUsageError(fmt.Sprintf("call: %v", err))
		}
		t = h
	}

	c, err := client.New(schema, t, client.WithLogger(logger))
	if err != nil {
		return err
	}
	args, err := parseArgs(cfg.Args)
	if err != nil {
		return err
	}
	inv, err := resolveRoute(c, cfg.Route, args, cfg.Body)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		return printRequest(s.out, cfg, inv.Request())
	}
	v, err := inv.Invoke(ctx)
	if err != nil {
		return &invokeError{route: cfg.Route, err: err}
	}
	return printResult(s.out, v)
}

// callArgs holds --arg values by name and tracks which were consumed.
type callArgs struct {
	values map[string][]string
	used   map[string]bool
}

func parseArgs(raw []string) (*callArgs, error) {
	a := &callArgs{values: map[string][]string{}, used: map[string]bool{}}
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, newUsageError(fmt.Sprintf("call: invalid --arg %q (want name=value)", item))
		}
		a.values[name] = append(a.values[name], value)
	}
	return a, nil
}

func (a *callArgs) take(name string) []string {
	a.used[name] = true
	return a.values[name]
}

func (a *callArgs) unused() []string {
	var out []string
	for name := range a.values {
		if !a.used[name] {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// resolveRoute walks c along the branch path, feeding every parameter from
// args or body, and returns the resulting invocation.
func resolveRoute(c client.Client, path string, args *callArgs, body string) (*client.Invocation, error) {
	var segments []string
	for seg := range strings.SplitSeq(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	for {
		switch n := c.(type) {
		case client.Named:
			if len(segments) == 0 {
				return nil, newUsageError(fmt.Sprintf("call: %q is a group; choose one of: %s", path, strings.Join(n.Keys(), ", ")))
			}
			next, err := n.Branch(segments[0])
			if err != nil {
				return nil, newUsageError(fmt.Sprintf("call: unknown route %q: %v", path, err))
			}
			c, segments = next, segments[1:]
		case *client.Func:
			v, err := argValue(n.Param(), args, body)
			if err != nil {
				return nil, err
			}
			next, err := n.Apply(v)
			if err != nil {
				return nil, newUsageError(fmt.Sprintf("call: %v", err))
			}
			c = next
		case *client.Invocation:
			if len(segments) > 0 {
				return nil, newUsageError(fmt.Sprintf("call: route %q ends before %q", path, strings.Join(segments, "/")))
			}
			if extra := args.unused(); len(extra) > 0 {
				return nil, newUsageError(fmt.Sprintf("call: route %q takes no argument(s) %s", path, strings.Join(extra, ", ")))
			}
			return n, nil
		default:
			return nil, fmt.Errorf("call: unexpected client %T", c)
		}
	}
}

func argValue(p route.Param, args *callArgs, body string) (any, error) {
	if p.Kind == route.ParamBody {
		return bodyValue(codec.ContentType(p.Name), body)
	}
	values := args.take(p.Name)
	switch p.Kind {
	case route.ParamCaptureAll:
		out := []string{}
		for _, v := range values {
			for seg := range strings.SplitSeq(v, "/") {
				if seg != "" {
					out = append(out, seg)
				}
			}
		}
		return out, nil
	case route.ParamQueryList:
		if values == nil {
			return []string{}, nil
		}
		return values, nil
	}
	if len(values) > 1 {
		return nil, newUsageError(fmt.Sprintf("call: --arg %s given %d times", p.Name, len(values)))
	}
	if len(values) == 0 {
		if p.Kind == route.ParamQuery {
			return nil, nil
		}
		return nil, newUsageError(fmt.Sprintf("call: missing %s; pass --arg %s=<value>", p.Kind, p.Name))
	}
	return values[0], nil
}

// bodyValue turns --body text into a value the content type's codec
// accepts.
func bodyValue(ct codec.ContentType, raw string) (any, error) {
	if raw == "" {
		return nil, newUsageError(fmt.Sprintf("call: this route needs a %s body; pass --body", ct))
	}
	data := []byte(raw)
	if file, ok := strings.CutPrefix(raw, "@"); ok {
		var err error
		if data, err = os.ReadFile(file); err != nil {
			return nil, newUsageError(fmt.Sprintf("call: read body: %v", err))
		}
	}
	switch ct {
	case codec.JSON:
		if !json.Valid(data) {
			return nil, newUsageError("call: --body is not valid JSON")
		}
		return json.RawMessage(data), nil
	case codec.YAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, newUsageError(fmt.Sprintf("call: --body is not valid YAML: %v", err))
		}
		return v, nil
	case codec.Form:
		values, err := url.ParseQuery(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("call: --body is not a form: %v", err))
		}
		return values, nil
	}
	return string(data), nil
}

func printRequest(w io.Writer, cfg *Config, req *request.Request) error {
	target := req.URL
	if cfg.BaseURL != "" {
		target = strings.TrimRight(cfg.BaseURL, "/") + req.URL
	}
	fmt.Fprintf(w, "%s %s\n", req.Method, target)
	for _, h := range cfg.Headers {
		fmt.Fprintln(w, h)
	}
	for _, h := range req.Header {
		fmt.Fprintf(w, "%s: %s\n", h.Name, h.Value)
	}
	if req.Accept.MediaType != "" {
		fmt.Fprintf(w, "Accept: %s\n", req.Accept.MediaType)
	}
	if req.Body != nil {
		fmt.Fprintf(w, "\n%s\n", req.Body.Payload)
	}
	return nil
}

func printResult(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		_, err := io.WriteString(w, s)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
