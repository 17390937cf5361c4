package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/durablefs/vfs/internal/config"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Print an entry's attributes",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

func init() {
	rootCmd.AddCommand(statCmd)
}

func runStat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debug, _ := cmd.Root().PersistentFlags().GetBool("debug")
	fs, closeFS, err := buildFS(context.Background(), cfg, debug)
	if err != nil {
		return fmt.Errorf("failed to open filesystem: %w", err)
	}
	defer closeFS()

	info, err := fs.Lstat(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("path:   %s\n", info.Path)
	fmt.Printf("type:   %s\n", info.Type)
	fmt.Printf("mode:   %o\n", info.Mode)
	fmt.Printf("size:   %d\n", info.Size)
	fmt.Printf("tier:   %s\n", info.Tier)
	fmt.Printf("mtime:  %d\n", info.MTime)
	if info.LinkTarget != "" {
		fmt.Printf("target: %s\n", info.LinkTarget)
	}
	return nil
}
