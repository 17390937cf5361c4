package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/durablefs/vfs/internal/config"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Sweep unreferenced blobs",
	Long:  `Delete every blob with a zero reference count that isn't part of an in-progress transaction.`,
	RunE:  runGC,
}

func init() {
	rootCmd.AddCommand(gcCmd)
}

func runGC(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debug, _ := cmd.Root().PersistentFlags().GetBool("debug")
	ctx := context.Background()
	st, err := buildStores(ctx, cfg, debug)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer st.Close()

	swept, err := st.blobs.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Printf("swept %d unreferenced blob(s)\n", swept)
	return nil
}
