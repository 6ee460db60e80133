// Package cmd contains all the commands included in the graft binary.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand enables all children commands to read flags from CLI
// flags, environment variables prefixed with GRAFT, or config.yaml (in
// that order).
func NewRootCommand() *cobra.Command {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("GRAFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	configPaths := []string{"/etc/graft", "$HOME/.graft", "."}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}
	_ = viper.ReadInConfig()

	return &cobra.Command{
		Use:   "graft",
		Short: "Client for the GraftDB graph database REST API",
		Long:  "Client for the GraftDB graph database REST API: run graph traversals from a starting node or relationship and stream typed results, one page at a time if asked.",
	}
}
