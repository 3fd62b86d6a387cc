// Package cli implements the discordops command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/discordops/config"
	"github.com/jonwraymond/discordops/observe"
)

// Version is reported by --version. Set by main.
var Version = "dev"

type app struct {
	cfgFile string
	verbose bool
	output  string

	cfg    *config.Config
	logger observe.Logger

	// stderr receives log records. Default: the command's error stream.
	stderr io.Writer
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "discordops",
		Short:         "Operate a Discord bot through the REST API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	flags.StringVarP(&a.output, "output", "o", formatTable, "output format: table|json")

	root.AddCommand(
		a.serveCommand(),
		a.statsCommand(),
		a.resetCommand(),
		a.guildsCommand(),
		a.whoamiCommand(),
		a.tokenCommand(),
	)
	return root
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) load(cmd *cobra.Command) error {
	if a.output != formatTable && a.output != formatJSON {
		return fmt.Errorf("unsupported output format %q", a.output)
	}
	cfg, err := config.Load(cmd.Context(), a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Observe.LogLevel = "debug"
	}
	a.cfg = cfg

	if a.stderr == nil {
		a.stderr = cmd.ErrOrStderr()
	}
	a.logger = observe.NewLoggerWithWriter(cfg.Observe.LogLevel, a.stderr)
	return nil
}
