package main

import (
	"os"

	"github.com/graftdb/graft-go/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	traverseCmd := cmd.NewTraverseCommand()
	rootCmd.AddCommand(traverseCmd)

	versionCmd := cmd.NewVersionCommand()
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
