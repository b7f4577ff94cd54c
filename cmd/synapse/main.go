package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toyz/synapse/internal/cli"
	"github.com/toyz/synapse/internal/config"
	"github.com/toyz/synapse/internal/utils"
	"github.com/toyz/synapse/pkg/synapse"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type generateOptions struct {
	module    string
	config    string
	output    string
	contracts []string
	verbose   bool
	quiet     bool
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "synapse",
		Short: "Generate HTTP clients from annotated Go interfaces",
		Long: `Synapse scans Go packages for interfaces annotated with //synapse::client
and writes a concrete HTTP client for each into ` + utils.DefaultOutputFile + `.

Directory arguments accept Go-style patterns such as ./... and ./internal/...`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newGenerateCmd(), newCleanCmd(), newVersionCmd())
	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [dirs...]",
		Short: "Generate clients for the given directories",
		Example: `  synapse generate ./...
  synapse generate --module github.com/acme/shop ./internal/...
  synapse generate --contract contracts/billing.yaml
  synapse generate --quiet --output clients_gen.go ./api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.module, "module", "", "Module path for imports (defaults to go.mod module)")
	flags.StringVar(&opts.config, "config", "", "Config file (defaults to ./synapse.yaml when present)")
	flags.StringVar(&opts.output, "output", "", "Generated file name in each package")
	flags.StringArrayVar(&opts.contracts, "contract", nil, "YAML contract file to generate (repeatable)")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output and detailed error reporting")
	flags.BoolVar(&opts.quiet, "quiet", false, "Only show errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts generateOptions) error {
	fileCfg, err := config.Load(opts.config)
	if err != nil {
		cli.NewDiagnosticReporter(opts.verbose).ReportError(err)
		return err
	}

	diagnostics := newDiagnostics(fileCfg, opts)
	for _, warning := range fileCfg.Validate() {
		diagnostics.Warn("%s", warning)
	}

	if len(args) == 0 && len(opts.contracts) == 0 && len(fileCfg.Contracts) == 0 {
		args = []string{"./..."}
	}
	runCfg := cli.ConfigFrom(fileCfg, args, opts.module, opts.output, opts.contracts)
	runCfg.Verbose = opts.verbose

	logger, err := synapse.NewLogger(synapse.LogConfig{
		Env:     fileCfg.Log.Env,
		Level:   fileCfg.Log.Level,
		Service: "synapse",
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	diagnostics.Header("generating clients")
	generator := cli.NewGeneratorWithDiagnostics(opts.verbose, diagnostics).WithLogger(logger)
	generator.Reporter().SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	err = generator.Run(runCfg)
	var problems *cli.ProblemsError
	switch {
	case err == nil:
		if opts.verbose {
			generator.Reporter().ReportSuccess(generator.GetSummary())
		}
	case stderrors.As(err, &problems):
		// already reported per problem
	default:
		generator.Reporter().ReportError(err)
	}
	return err
}

func newDiagnostics(cfg *config.Config, opts generateOptions) *utils.DiagnosticSystem {
	switch {
	case opts.quiet:
		return utils.NewQuietDiagnostics()
	case opts.verbose:
		return utils.NewVerboseDiagnostics()
	}
	level, ok := utils.ParseDiagnosticLevel(cfg.Diagnostics)
	if !ok {
		level = utils.DiagnosticInfo
	}
	return utils.NewDiagnosticSystem(level)
}

func newCleanCmd() *cobra.Command {
	var (
		output     string
		configPath string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "clean [dirs...]",
		Short: "Delete generated client files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.Output
			}
			if len(args) == 0 {
				args = []string{"./..."}
			}

			d := newDiagnostics(cfg, generateOptions{quiet: quiet})
			d.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

			removed, err := cli.NewCleaner(output).CleanGeneratedFiles(args)
			if len(removed) > 0 {
				d.Section("Removed")
				d.Indent()
				for _, path := range removed {
					d.List("%s", path)
				}
				d.Unindent()
			}
			if err != nil {
				d.Problem(err)
				return err
			}
			d.Success("%d generated files removed", len(removed))
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "Generated file name to delete")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (defaults to ./synapse.yaml when present)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Only show errors")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the synapse version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "synapse %s\n", version)
		},
	}
}
