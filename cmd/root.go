package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bigearthnet-go/bencommon/cmd/build"
	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/cmd/constants"
	"github.com/bigearthnet-go/bencommon/cmd/describe"
	"github.com/bigearthnet-go/bencommon/cmd/fetch"
	"github.com/bigearthnet-go/bencommon/cmd/sets"
	"github.com/bigearthnet-go/bencommon/cmd/validate"
)

type globalFlags struct {
	configFile string
	dataDir    string
	logLevel   string
	debug      bool
}

// RootCommand creates and returns the root command
func RootCommand(env *cmdutil.Env) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "bencommon",
		Short:         "BigEarthNet metadata toolkit",
		Long:          "Look up, filter and validate BigEarthNet patches and build patch metadata tables.",
		Version:       env.Build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	constantsCmd := constants.Command()
	subcommands := []*cobra.Command{
		validate.Command(env),
		describe.Command(env),
		sets.Command(env),
		fetch.Command(env),
		build.Command(env),
		constantsCmd,
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// constants only prints static tables
		if cmd.Name() == constantsCmd.Name() {
			return nil
		}
		return initialize(env, flags)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		env.Close()
	}

	return rootCmd
}

// initialize loads the configuration, applies the global flags on top of it
// and sets up logging and telemetry.
func initialize(env *cmdutil.Env, flags *globalFlags) error {
	if err := env.Load(flags.configFile); err != nil {
		return err
	}
	if flags.dataDir != "" {
		env.Settings.Resources.Dir = flags.dataDir
	}
	if flags.debug {
		env.Settings.Debug = true
	}
	if err := env.InitLogging(flags.logLevel); err != nil {
		return err
	}
	return env.InitTelemetry()
}

func setupFlags(rootCmd *cobra.Command, flags *globalFlags) {
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to config.yaml (default: search ., ~/.config/bencommon, /etc/bencommon)")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Directory holding the lookup tables (overrides resources.dir)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "Enable debug output")
}
