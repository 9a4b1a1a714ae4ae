package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tplslim/tplslim/internal/cache"
	"github.com/tplslim/tplslim/internal/config"
	"github.com/tplslim/tplslim/internal/logging"
	"github.com/tplslim/tplslim/internal/minify"
)

var minifyCmd = &cobra.Command{
	Use:   "minify [paths...]",
	Short: "Minify templates into the cache directory",
	Long: `Minify template files and write the results to the cache directory.
With no arguments all configured scan paths are processed; explicit file
or directory arguments override the configured paths.

Examples:
  tplslim minify                     # Minify all configured paths
  tplslim minify views/page.tpl      # Minify a single template
  tplslim minify --force             # Re-minify even when cached
  tplslim minify --analyze           # Print a per-file size report`,
	RunE: runMinify,
}

var (
	minifyForce   bool
	minifyAnalyze bool
	minifyFormat  string
)

func init() {
	rootCmd.AddCommand(minifyCmd)

	minifyCmd.Flags().BoolVarP(&minifyForce, "force", "f", false, "Re-minify even when a cached copy exists")
	minifyCmd.Flags().BoolVar(&minifyAnalyze, "analyze", false, "Print a size report per file")
	minifyCmd.Flags().StringVar(&minifyFormat, "format", "text", "Report format (text, json)")
	AddFlagValidation(minifyCmd, "format", ValidateChoice("text", "json"))
}

func runMinify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	minifier, store, logger, err := buildMinifier(cfg)
	if err != nil {
		return err
	}

	paths, err := collectTemplates(cfg, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no templates found")
		return nil
	}

	ctx := cmd.Context()
	perf := logger.StartOperation("minify")
	for _, path := range paths {
		var cachePath string
		if minifyForce {
			if err := minifier.Minify(ctx, path); err != nil {
				return fmt.Errorf("minifying %s: %w", path, err)
			}
			cachePath, err = minifier.PathToMinified(path)
		} else {
			cachePath, err = minifier.GetMinified(ctx, path)
		}
		if err != nil {
			return fmt.Errorf("minifying %s: %w", path, err)
		}

		if minifyAnalyze {
			if err := printReport(store, cfg, path, cachePath); err != nil {
				return err
			}
		} else {
			fmt.Printf("%s -> %s\n", path, cachePath)
		}
	}
	perf.End(ctx)

	hitRate, evictions := minifier.MemoStats()
	logger.Debug(ctx, "memo statistics",
		"hit_rate", hitRate,
		"evictions", evictions,
	)

	return nil
}

func printReport(store *cache.Store, cfg *config.Config, srcPath, cachePath string) error {
	source, err := store.ReadSource(srcPath)
	if err != nil {
		return err
	}
	minified, err := store.ReadSource(cachePath)
	if err != nil {
		return err
	}

	report := minify.Analyze(source, minified, cfg.Minify.ProtectedElements)

	switch minifyFormat {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "text":
		fmt.Printf("%s: %d -> %d bytes (%.1f%% saved), %d elements, %d protected\n",
			srcPath, report.SourceBytes, report.MinifiedBytes, report.SavedPercent,
			report.Elements, report.ProtectedElements)
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", minifyFormat)
	}

	return nil
}

// buildMinifier assembles the minifier and its collaborators from loaded
// configuration.
func buildMinifier(cfg *config.Config) (*minify.Minifier, *cache.Store, *logging.SlimLogger, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := cache.NewStore(cwd, cfg.Cache.Dir)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: "text",
		Output: os.Stderr,
	})

	minifier := minify.New(
		store,
		minify.NewCodeTransformer(cfg.Minify.MaxCodeNesting),
		minify.NewPipeline(cfg.Minify.InlineElements, cfg.Minify.ProtectedElements),
		cache.NewContentCache(cfg.Cache.MaxSize, cfg.Cache.TTL),
		logger,
	)

	return minifier, store, logger, nil
}

// collectTemplates resolves the template files to process: explicit args
// when given, the configured scan paths otherwise. Directories are walked
// for files with the configured extension; exclude patterns match against
// base names.
func collectTemplates(cfg *config.Config, args []string) ([]string, error) {
	roots := args
	if len(roots) == 0 {
		roots = cfg.Templates.ScanPaths
	}

	var paths []string
	seen := make(map[string]bool)

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) && len(args) == 0 {
				// Missing configured paths are skipped quietly.
				continue
			}
			return nil, err
		}

		if !info.IsDir() {
			if !seen[root] {
				seen[root] = true
				paths = append(paths, root)
			}
			continue
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || filepath.Ext(path) != cfg.Templates.Ext {
				return nil
			}
			if excluded(cfg.Templates.ExcludePatterns, path) || seen[path] {
				return nil
			}
			seen[path] = true
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return paths, nil
}

func excluded(patterns []string, path string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
