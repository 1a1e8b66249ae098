package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m3rciful/mediareq/core/buildinfo"

	"github.com/spf13/cobra"
)

// NewRootCommand returns the cobra command that runs the bot.
func NewRootCommand(use, short string, opts Options) *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       buildinfo.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, opts.ConfigPath(cfgPath), opts)
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "", "path to the YAML config file (env "+envName(opts)+")")
	return root
}

// Execute runs root with a background context and exits non-zero on failure.
func Execute(root *cobra.Command) {
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func envName(opts Options) string {
	if opts.ConfigEnvVar != "" {
		return opts.ConfigEnvVar
	}
	return "CONFIG_PATH"
}
