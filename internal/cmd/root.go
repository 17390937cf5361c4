package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vfsd",
	Short: "Run or mount the durable execution host's virtual filesystem",
	Long:  `vfsd serves a single-tenant virtual filesystem backed by a relational metadata store and a tiered blob store, optionally exposed at a real mountpoint via FUSE.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (not read: configuration always comes from $XDG_CONFIG_HOME/vfs/config.yaml or ~/.config/vfs/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")
}
