package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tplslim/tplslim/internal/config"
	"github.com/tplslim/tplslim/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch template paths and re-minify on change",
	Long: `Watch the configured scan paths and re-minify templates whenever they
change, keeping the cache directory current during development. Explicit
file or directory arguments override the configured paths.

Examples:
  tplslim watch                   # Watch all configured scan paths
  tplslim watch views             # Watch a single directory
  tplslim watch views/page.tpl    # Watch a single template`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	minifier, _, _, err := buildMinifier(cfg)
	if err != nil {
		return err
	}

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, nil)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.ExtFilter(cfg.Templates.Ext))
	fileWatcher.AddFilter(watcher.NoGitFilter)
	fileWatcher.AddFilter(watcher.NoCacheDirFilter(cfg.Cache.Dir))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		for _, event := range events {
			if event.Type == watcher.EventTypeDeleted {
				minifier.Invalidate(event.Path)
				continue
			}
			if err := minifier.Minify(ctx, event.Path); err != nil {
				fmt.Fprintf(os.Stderr, "minify %s: %v\n", event.Path, err)
				continue
			}
			fmt.Printf("re-minified %s\n", event.Path)
		}
		return nil
	})

	roots := args
	if len(roots) == 0 {
		roots = cfg.Templates.ScanPaths
	}

	watching := 0
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if len(args) > 0 {
				return fmt.Errorf("watching %s: %w", root, err)
			}
			// Missing configured paths are skipped quietly.
			continue
		}
		if info.IsDir() {
			err = fileWatcher.AddRecursive(root)
		} else {
			err = fileWatcher.AddPath(root)
		}
		if err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		watching++
	}
	if watching == 0 {
		return fmt.Errorf("no watchable paths; check templates.scan_paths")
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return err
	}

	fmt.Println("Watching for template changes. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nStopping watcher")
	case <-ctx.Done():
	}

	return nil
}
