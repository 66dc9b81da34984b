package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/codegate/core/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "codegate "+buildinfo.String())
	},
}
