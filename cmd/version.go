package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/graftdb/graft-go/internal/build"
)

// NewVersionCommand returns the command to get the graft version.
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Return the graft version",
		Long:  "Return the graft version.",
		RunE:  version,
		Args:  cobra.NoArgs,
	}

	return cmd
}

// print out the built version
func version(_ *cobra.Command, _ []string) error {
	log.Printf("graft version %s date %s commit id %s", build.Version, build.Date, build.Commit)
	return nil
}
