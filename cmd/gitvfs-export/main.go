// Command gitvfs-export opens a PersistentFS-backed repository
// database and prints its storage stats and .git/ object export, for
// inspecting a store outside of the git library that normally drives it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/xoderx/gitvfs/relfs"
)

const (
	generalErrorExitCode = -1
	usage                = `Usage:
	gitvfs-export -db <path> [-export]
`
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ERR:", err)
		os.Exit(generalErrorExitCode)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("gitvfs-export", flag.ContinueOnError)
	dbPath := fs.String("db", "", "path to the SQLite repository database")
	export := fs.Bool("export", false, "also print every exported .git/ object path and size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		fmt.Print(usage)
		return fmt.Errorf("-db is required")
	}

	ctx := context.Background()
	store, err := relfs.Open(ctx, *dbPath, nil)
	if err != nil {
		return fmt.Errorf("open %s: %w", *dbPath, err)
	}
	defer store.Close()

	stats, err := store.StorageStats(ctx)
	if err != nil {
		return fmt.Errorf("storage stats: %w", err)
	}

	fmt.Printf("objects: %d\n", stats.TotalObjects)
	fmt.Printf("total:   %s\n", humanize.Bytes(uint64(stats.TotalBytes)))
	if stats.LargestObject != nil {
		fmt.Printf("largest: %s (%s)\n", stats.LargestObject.Path, humanize.Bytes(uint64(stats.LargestObject.Bytes)))
	}

	if *export {
		objects, err := store.ExportGitObjects(ctx)
		if err != nil {
			return fmt.Errorf("export git objects: %w", err)
		}
		for _, obj := range objects {
			fmt.Printf("%s\t%s\n", obj.Path, humanize.Bytes(uint64(len(obj.Data))))
		}
	}

	return nil
}
