package main

import (
	"fmt"

	"dbchat/pkg/version"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dbchat version %s\n", version.Summary())
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built: %s\n", version.Date)
			fmt.Fprintf(out, "  go: %s\n", version.GoVersion)
			fmt.Fprintf(out, "  platform: %s\n", version.Platform())
		},
	}
}
