package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/texstack/runtime/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	debug      bool
	noColor    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		FormatError(os.Stderr, err, colorEnabled(false))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "texstack",
		Short:         "Build LaTeX math on a stack",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultPath(), "Path to the settings file")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newReplCommand(flags),
		newRunCommand(flags),
		newRenderCommand(flags),
		newCommandsCommand(flags),
		newKeysCommand(flags),
	)
	return rootCmd
}

// loadSettings reads the settings file named by the flags and applies the
// --debug override.
func (f *globalFlags) loadSettings() (config.Settings, error) {
	settings := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return config.Settings{}, err
		}
		settings = loaded
	}
	if f.debug {
		settings.Debug = true
	}
	return settings, nil
}

func (f *globalFlags) useColor() bool {
	return colorEnabled(f.noColor)
}
