// Package cli is the terrepro command line: the web server and the
// maintenance commands around its session store.
package cli

import (
	"terrepro/internal/config"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "terrepro",
		Short: "TerrePro web front-end",
		Long:  "Server-rendered front-end for the TerrePro farm-management API.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "optional YAML config file (environment variables take precedence)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))

	return cmd
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath == "" {
		return config.Load(), nil
	}
	return config.LoadFile(opts.ConfigPath)
}
