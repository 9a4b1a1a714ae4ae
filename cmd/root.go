// Package cmd provides the command-line interface for tplslim with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --log-level, etc.) - highest priority
//	2. TPLSLIM_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (TPLSLIM_CACHE_DIR, etc.)
//	4. Configuration files (.tplslim.yml) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tplslim",
	Short: "A template minifier with a persistent cache",
	Long: `tplslim strips comments and collapses insignificant whitespace in
server-side templates, writing each minified file to a cache directory
so templates are minified once and served many times.

Key Features:
  • Code-aware comment stripping with a safe fallback path
  • Six ordered whitespace-collapsing passes
  • Byte-exact preservation of textarea, pre, and script bodies
  • Persistent minified-file cache with in-memory memoization
  • Watch mode that re-minifies templates as they change

Quick Start:
  tplslim minify                  Minify all configured template paths
  tplslim minify views/page.tpl   Minify a single template
  tplslim watch                   Re-minify on file changes
  tplslim clean                   Drop the minified cache
  tplslim config init             Write a default .tplslim.yml`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tplslim.yml, can also use TPLSLIM_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	AddFlagValidation(rootCmd, "config", ValidateFileExists)
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. TPLSLIM_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .tplslim.yml in current directory
//
// Environment variables with the TPLSLIM_ prefix override file values,
// e.g. TPLSLIM_CACHE_DIR=.cache/min.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("TPLSLIM_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tplslim")
	}

	viper.SetEnvPrefix("TPLSLIM")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or malformed config file falls back to defaults.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
