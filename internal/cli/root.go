package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the routeclient CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "routeclient",
		Short:         "Call HTTP APIs described by route schemas",
		Long:          "routeclient compiles a route file or Swagger/OpenAPI document into a client tree, lists its routes and invokes them.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log every request at debug level")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error); defaults to warn")

	for _, sub := range []*cobra.Command{newRoutesCmd(), newCallCmd(), newExportCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}
	return cmd
}

// flagError turns Cobra flag errors (like unknown flags) into usage errors
// that also show the command's help text.
func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
