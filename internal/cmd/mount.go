package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/durablefs/vfs/internal/config"
	"github.com/durablefs/vfs/internal/fuseadapter"
)

var mountCmd = &cobra.Command{
	Use:   "mount [mountpoint]",
	Short: "Mount the virtual filesystem at a real OS path",
	Long:  `Mount the virtual filesystem at the given path via FUSE, serving it to any process on the host until unmounted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMount,
}

func init() {
	rootCmd.AddCommand(mountCmd)
	mountCmd.Flags().Bool("allow-other", false, "allow other users to access the mount")
}

func runMount(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mountpoint := cfg.Mount.DefaultPath
	if len(args) > 0 {
		mountpoint = args[0]
	}
	if mountpoint == "" {
		return fmt.Errorf("mountpoint required: vfsd mount /path/to/mount")
	}
	if err := os.MkdirAll(mountpoint, 0755); err != nil {
		return fmt.Errorf("failed to create mountpoint: %w", err)
	}

	debug, _ := cmd.Root().PersistentFlags().GetBool("debug")
	allowOther := cfg.Mount.AllowOther
	if v, _ := cmd.Flags().GetBool("allow-other"); v {
		allowOther = true
	}

	ctx := context.Background()
	fs, closeFS, err := buildFS(ctx, cfg, debug)
	if err != nil {
		return fmt.Errorf("failed to build filesystem: %w", err)
	}

	fmt.Printf("Mounting virtual filesystem at %s\n", mountpoint)
	server, err := fuseadapter.Mount(mountpoint, fs, fuseadapter.Options{
		Debug:      debug,
		AllowOther: allowOther,
	})
	if err != nil {
		closeFS()
		return fmt.Errorf("failed to mount: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nUnmounting...")
		server.Unmount()
	}()

	fmt.Println("Filesystem mounted. Press Ctrl+C to unmount.")
	server.Wait()

	return closeFS()
}
