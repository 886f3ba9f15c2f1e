package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// bindingsCmd represents the bindings command.
var bindingsCmd = newBindingsCmd()

func newBindingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bindings [paths...]",
		Short: "Print the binding metadata of components",
		Long:  bindingsLongDescription,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindCompileFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return workflow.Compile(ctx, compileArgs(args, false))
		},
	}

	configureCompileFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(bindingsCmd)
}
