package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mark3labs/routeclient/internal/route"
)

// streams are the writers a command prints to.
type streams struct {
	out io.Writer
	err io.Writer
}

func cmdStreams(cmd *cobra.Command) streams {
	return streams{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
}

var routesRunner = runRoutes

func newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes of a schema",
		Long: "List every route of a route file or Swagger/OpenAPI document with its " +
			"method, path template and response content type.",
		Example: strings.TrimSpace(`  routeclient routes --schema routes.yaml
  routeclient routes --schema https://petstore3.swagger.io/api/v3/openapi.json --include-tags pet`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			return routesRunner(cmd.Context(), cfg, cmdStreams(cmd))
		},
	}
	addSchemaFlags(cmd.Flags())
	return cmd
}

func runRoutes(ctx context.Context, cfg *Config, s streams) error {
	schema, err := loadSchema(ctx, cfg)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tMETHOD\tPATH\tRESPONSE")
	for _, leaf := range route.Leaves(schema) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", strings.Join(leaf.Branch, "/"), leaf.Method, leaf.Template, leaf.ContentType)
	}
	return tw.Flush()
}
