package dotseed

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotseed/internal/version"
	"github.com/arthur-debert/dotseed/pkg/config"
	"github.com/arthur-debert/dotseed/pkg/deploy"
	"github.com/arthur-debert/dotseed/pkg/logging"
	"github.com/arthur-debert/dotseed/pkg/ui"
	"github.com/arthur-debert/dotseed/pkg/ui/converter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	verbosity  int
	dryRun     bool
	format     string
	configFile string
}

// runFlags override configuration keys for a single invocation.
type runFlags struct {
	home        string
	sandbox     string
	manifest    string
	output      string
	profile     string
	shellRc     string
	compression string
}

// flagKeys maps run flag names to configuration keys.
var flagKeys = map[string]string{
	"home":        "home",
	"sandbox":     "sandbox",
	"manifest":    "archive.manifest",
	"output":      "archive.output",
	"profile":     "sources.profile",
	"shell-rc":    "sources.shell_rc",
	"compression": "archive.compression",
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		global globalFlags
		run    runFlags
	)

	rootCmd := &cobra.Command{
		Use:     "dotseed",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(global.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, &global)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&global.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&global.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&global.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVar(&global.configFile, "config", "", MsgFlagConfig)
	addRunFlags(rootCmd.Flags(), &run)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newConfigCmd(&global))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func addRunFlags(fs *pflag.FlagSet, run *runFlags) {
	fs.StringVar(&run.home, "home", "", MsgFlagHome)
	fs.StringVar(&run.sandbox, "sandbox", "", MsgFlagSandbox)
	fs.StringVar(&run.manifest, "manifest", "", MsgFlagManifest)
	fs.StringVar(&run.output, "output", "", MsgFlagOutput)
	fs.StringVar(&run.profile, "profile", "", MsgFlagProfile)
	fs.StringVar(&run.shellRc, "shell-rc", "", MsgFlagShellRc)
	fs.StringVar(&run.compression, "compression", "", MsgFlagCompression)
}

// flagOverrides collects the run flags the user actually set, so unset
// flags do not mask the config file or environment.
func flagOverrides(fs *pflag.FlagSet) map[string]interface{} {
	overrides := map[string]interface{}{}
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})
	return overrides
}

func loadConfig(cmd *cobra.Command, global *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: global.configFile,
		Overrides:  flagOverrides(cmd.Flags()),
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

func runDeploy(cmd *cobra.Command, global *globalFlags) error {
	format, err := ui.ParseFormat(global.format)
	if err != nil {
		return err
	}
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	// JSON consumers read stdout only, so setup errors go there too.
	fail := func(err error) error {
		if format == ui.FormatJSON {
			_ = renderer.RenderError(err)
		}
		return err
	}

	cfg, err := loadConfig(cmd, global)
	if err != nil {
		return fail(err)
	}
	opts, err := cfg.Options()
	if err != nil {
		return fail(err)
	}
	opts.DryRun = global.dryRun

	deployer, err := deploy.New(opts)
	if err != nil {
		return fail(err)
	}

	log.Info().
		Str("home", opts.Home).
		Str("manifest", opts.ManifestPath).
		Bool("dry_run", opts.DryRun).
		Msg("Running deploy")

	result, runErr := deployer.Run(cmd.Context())
	if err := renderer.RenderReport(converter.ConvertRun(result, runErr)); err != nil {
		log.Warn().Err(err).Msg("Failed to render report")
	}
	return runErr
}

func newConfigCmd(global *globalFlags) *cobra.Command {
	var (
		run      runFlags
		defaults bool
	)
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if defaults {
				_, err := io.WriteString(out, config.DefaultConfigContent())
				return err
			}
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			doc, err := cfg.TOML()
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, doc)
			return err
		},
	}
	addRunFlags(cmd.Flags(), &run)
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
