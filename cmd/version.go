package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gh-notifications-cleanup/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", config.AppName, version)
		},
	}
}
