// Package cmd provides the root command and CLI setup for sfcc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sfcc.dev/pkg/sfcc/internal/adapter"
	"sfcc.dev/pkg/sfcc/internal/controller"
	"sfcc.dev/pkg/sfcc/internal/domain"
	m "sfcc.dev/pkg/sfcc/internal/model"
)

var scriptParser adapter.ScriptParser
var fsAdapter adapter.SourceFSAdapter
var descriptorLoader adapter.DescriptorLoader
var resultStore adapter.ResultStore
var compiler domain.Compiler
var workflow domain.Workflow
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that read/write results.
var outputDirFlag string

// noCacheFlag disables incremental caching when set.
var noCacheFlag bool

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

var logFileFlag string
var verboseFlag bool

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	scriptParser = adapter.NewTreeSitterParser()
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	descriptorLoader = adapter.NewYAMLDescriptorLoader(fsAdapter)
	resultStore = adapter.NewResultStore(fsAdapter)
	compiler = domain.NewCompiler(scriptParser)
	workflow = domain.NewWorkflow(
		fsAdapter,
		descriptorLoader,
		resultStore,
		ui,
		compiler,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...                 recursively scan current directory
  - ./components/...      recursively scan components directory
  - ./a ./b/Card.sfc.yaml scan directories and single descriptors`

const rootLongDescription = `sfcc compiles the setup script of single-file components into a plain
module with a setup function, and emits binding metadata so the template
compiler can resolve every name with a direct access path.

Components are described by *.sfc.yaml descriptors.

` + pathPatternsHelp

const compileLongDescription = `Compile the descriptors found under the given paths (default: ./...)
and write <name>.js|.ts and <name>.bindings.json into the output directory.

` + pathPatternsHelp

const bindingsLongDescription = `Compile the descriptors found under the given paths and print the
binding metadata of every component without writing anything.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sfcc",
		Short:         "Single-file component setup script compiler",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for compiled components",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&noCacheFlag, noCacheFlagName, viper.GetBool(noCacheFlagName), "disable cached incremental runs (recompile everything)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noCacheFlagName), noCacheFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude descriptors matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file path (default from config)")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
