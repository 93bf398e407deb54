package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/txplain-labs/txplain/internal/version"
)

var runVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and commit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("version: %s\n", version.GetVersion())
		fmt.Printf("commit: %s\n", version.GetCommit())
	},
}
