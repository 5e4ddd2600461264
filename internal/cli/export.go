package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/routeclient/internal/emitter/yamlemitter"
)

var exportRunner = runExport

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a schema as a route file",
		Long: "Load a route file or Swagger/OpenAPI document and write it as a route file " +
			"together with a config file that points the other commands at it.",
		Example: strings.TrimSpace(`  routeclient export --schema openapi.yaml --out ./petstore --base-url https://petstore.example
  routeclient --config ./petstore/routeclient.yaml call listPets`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			return exportRunner(cmd.Context(), cfg, cmdStreams(cmd))
		},
	}

	flags := cmd.Flags()
	addSchemaFlags(flags)
	flags.String("out", "", "Output directory")
	flags.String("base-url", "", "Base URL recorded in the generated config")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")
	return cmd
}

func runExport(ctx context.Context, cfg *Config, s streams) error {
	schema, err := loadSchema(ctx, cfg)
	if err != nil {
		return err
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	res, err := yamlemitter.Emit(ctx, schema, yamlemitter.Options{
		OutDir:  cfg.Out,
		Source:  cfg.Schema,
		BaseURL: cfg.BaseURL,
		Force:   cfg.Force,
		DryRun:  cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		fmt.Fprintf(s.out, "Planned writes to %s (%d files):\n", absOut, len(res.Planned))
		for _, p := range res.Planned {
			fmt.Fprintf(s.out, "- %s\n", p.RelPath)
		}
		return nil
	}
	fmt.Fprintf(s.out, "Exported %d routes to %s\n", res.Routes, filepath.Join(absOut, yamlemitter.RoutesFile))
	return nil
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return schemaError(err)
}
