package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sfcc.dev/pkg/sfcc/internal/domain"
	m "sfcc.dev/pkg/sfcc/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [components...]",
		Short: "View previously compiled components",
		Long: `View the results stored in the output directory by earlier compile runs.
Pass component names to limit the view to them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := m.Path(viper.GetString(outputFlagName))
			return workflow.View(cmd.Context(), domain.ViewArgs{Output: outputPath, Names: args})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
