// Command vfsd serves a single-tenant virtual filesystem: init/stat/gc
// maintenance subcommands plus an optional real-OS FUSE mount.
package main

import (
	"fmt"
	"os"

	"github.com/durablefs/vfs/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
