package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/durablefs/vfs/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the metadata store and hot-tier directory",
	Long:  `Create the metadata database and hot-tier blob directory if absent, seeding the root entry. Safe to run against an already-initialized instance.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debug, _ := cmd.Root().PersistentFlags().GetBool("debug")
	_, closeFS, err := buildFS(context.Background(), cfg, debug)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer closeFS()

	fmt.Printf("Initialized metadata store at %s and hot tier at %s\n", cfg.Metadata.DBPath, cfg.Blob.HotDir)
	return nil
}
