package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tplslim/tplslim/internal/cache"
	"github.com/tplslim/tplslim/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the minified cache directory",
	Long: `Remove the cache directory and everything in it. The next minify or
watch run rebuilds entries on demand.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	store, err := cache.NewStore(cwd, cfg.Cache.Dir)
	if err != nil {
		return err
	}

	if err := store.Clean(); err != nil {
		return err
	}

	fmt.Printf("Removed cache directory %s\n", cfg.Cache.Dir)
	return nil
}
