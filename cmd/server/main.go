package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "task-service",
		Short:         "Task management API with query and suggestion engines",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (yaml, json, toml)")

	root.AddCommand(
		newServeCmd(&configFile),
		newMigrateCmd(&configFile),
	)
	return root
}
