package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/m3rciful/codegate/app/bot"
	corecmd "github.com/m3rciful/codegate/core/cmd"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot until SIGINT or SIGTERM",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	return corecmd.Run(cmd.Context(), corecmd.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := bot.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			app, err := bot.Bootstrap(ctx, cfg.(*bot.Config))
			if err != nil {
				return nil, err
			}
			return app, nil
		},
	})
}
