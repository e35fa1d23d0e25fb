package main

import (
	"strings"

	"codeberg.org/mutker/mcwatch/internal/config"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mcwatch",
		Short: "Track the availability and player load of a Minecraft server",
		Long: `mcwatch polls a Minecraft Java server's public status, keeps a daily record
of uptime and players per hour, and reports it to Discord or the console.

When called without a subcommand it runs the tracker (equivalent to 'mcwatch run').`,
		SilenceUsage: true,
		RunE:         runTracker,
	}

	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newRunCmd(),
		newTodayCmd(),
		newHistoryCmd(),
	)

	return root
}

// setup loads the configuration and initializes the global logger.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Options{
		Level:     strings.ToLower(cfg.LogLevel),
		File:      cfg.LogFile,
		IsService: logger.IsService(),
	}); err != nil {
		return nil, err
	}
	logger.Debug().Msg("Config loaded")

	return cfg, nil
}
