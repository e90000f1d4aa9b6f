package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreeapeiu/Mini-Shell/core/interp"
)

// builtinsCmd lists the commands the shell runs without an external
// process.
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands built into the shell.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range interp.BuiltinNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
