package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/codegate/app/bot"
	corecmd "github.com/m3rciful/codegate/core/cmd"
)

const defaultConfigPath = "config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:          "codegate",
	Short:        "Telegram bot that hands out videos by code to channel members",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (YAML or TOML); defaults to $"+corecmd.DefaultConfigEnvVar+" or "+defaultConfigPath)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

func resolveConfigPath() (string, error) {
	return corecmd.ResolveConfigPath(corecmd.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: defaultConfigPath,
	})
}

func loadConfig() (*bot.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return bot.LoadConfig(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
