package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/routeclient/internal/spec"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample route file",
		Long:  "Scaffold a commented route file that documents the route schema format.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
			}
			return initRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("out", "routes.yaml", "Where to write the sample route file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig, stdout io.Writer) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "routes.yaml"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleRoutesYAML) + "\n"
	if _, err := spec.DecodeSchemaFile([]byte(content)); err != nil {
		return fmt.Errorf("init: sample route file is invalid: %w", err)
	}

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(stdout, "Wrote sample route file to %s\n", absPath)
	return nil
}

// sampleRoutesYAML documents the route file format with a small widget API.
const sampleRoutesYAML = `# routeclient route file (YAML)
# Every route has a name; routes with nested routes are groups whose path
# prefixes every child. List them with:
#   routeclient routes --schema routes.yaml

routes:
  # {id} captures one path segment: --arg id=42
  - name: getWidget
    path: /widgets/{id}
    # json (default), yaml, form, text or any media type such as text/csv
    response: json

  # Query parameters are optional. A trailing ... makes a list parameter
  # that takes repeated --arg tag=a --arg tag=b.
  - name: listWidgets
    path: /widgets
    query: [tag..., limit]

  # Methods default to GET. body names the request content type.
  - name: createWidget
    method: post
    path: /widgets
    headers: [X-Request-Id]
    body: json

  # {path...} captures every remaining segment: --arg path=docs/readme.md
  - name: files
    path: /files/{path...}
    response: text

  - name: admin
    path: /admin
    routes:
      - name: health
        path: /healthz
        response: text
`
