package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sfcc.dev/pkg/sfcc/internal/domain"
	m "sfcc.dev/pkg/sfcc/internal/model"
)

var compileParallelFlag int
var compileProdFlag bool

// compileCmd represents the compile command.
var compileCmd = newCompileCmd()

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [paths...]",
		Short: "Compile component setup scripts",
		Long:  compileLongDescription,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindCompileFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return workflow.Compile(ctx, compileArgs(args, true))
		},
	}

	configureCompileFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

// configureCompileFlags declares the flags shared by compile and bindings.
// They are bound to config keys in PreRun because both commands share them.
func configureCompileFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&compileParallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of components compiled in parallel")
	cmd.Flags().BoolVar(&compileProdFlag, prodFlagName, viper.GetBool(productionConfigKey), "production mode (no prop type annotations in the code)")
}

func bindCompileFlags(cmd *cobra.Command) {
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)
	bindFlagToConfig(cmd.Flags().Lookup(prodFlagName), productionConfigKey)
}

func compileArgs(args []string, write bool) domain.CompileArgs {
	return domain.CompileArgs{
		Paths:      parsePaths(args),
		Exclude:    viper.GetStringSlice(excludeConfigKey),
		Output:     m.Path(viper.GetString(outputFlagName)),
		UseCache:   !viper.GetBool(noCacheFlagName),
		Threads:    viper.GetInt(parallelConfigKey),
		Production: viper.GetBool(productionConfigKey),
		Write:      write,
	}
}
