package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/andreeapeiu/Mini-Shell/core/config"
)

// initCmd writes a starter configuration for the SSH server.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the server configuration in the config directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		return config.Initialize(cfgPath, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
