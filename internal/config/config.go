// Package config provides configuration management for tplslim using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the TPLSLIM_ prefix, and validation with security checks.
// It manages the minified-file cache location, template discovery paths, and
// the whitespace-pipeline tag lists.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/tplslim/tplslim/internal/errors"
	"github.com/tplslim/tplslim/internal/minify"
)

type Config struct {
	Cache     CacheConfig     `yaml:"cache"`
	Templates TemplatesConfig `yaml:"templates"`
	Minify    MinifyConfig    `yaml:"minify"`
	Watch     WatchConfig     `yaml:"watch"`
}

type CacheConfig struct {
	Dir     string        `yaml:"dir"`
	MaxSize int64         `yaml:"max_size"`
	TTL     time.Duration `yaml:"ttl"`
}

type TemplatesConfig struct {
	Ext             string   `yaml:"ext"`
	ScanPaths       []string `yaml:"scan_paths"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

type MinifyConfig struct {
	// InlineElements is the ordered list of element names whose trailing
	// "> <" boundary keeps its space. The trailing "?" entry covers
	// embedded-code closing markers.
	InlineElements []string `yaml:"inline_elements"`
	// ProtectedElements name tags whose body whitespace is preserved exactly.
	ProtectedElements []string `yaml:"protected_elements"`
	// MaxCodeNesting bounds brace/paren nesting accepted by the code
	// transformer before it gives up and the fallback path runs.
	MaxCodeNesting int `yaml:"max_code_nesting"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set via viper (workaround for viper slice handling)
	if viper.IsSet("templates.scan_paths") && len(config.Templates.ScanPaths) == 0 {
		config.Templates.ScanPaths = viper.GetStringSlice("templates.scan_paths")
	}
	if viper.IsSet("templates.exclude_patterns") && len(config.Templates.ExcludePatterns) == 0 {
		config.Templates.ExcludePatterns = viper.GetStringSlice("templates.exclude_patterns")
	}
	if viper.IsSet("minify.inline_elements") && len(config.Minify.InlineElements) == 0 {
		config.Minify.InlineElements = viper.GetStringSlice("minify.inline_elements")
	}
	if viper.IsSet("minify.protected_elements") && len(config.Minify.ProtectedElements) == 0 {
		config.Minify.ProtectedElements = viper.GetStringSlice("minify.protected_elements")
	}

	// Underscored scalar keys do not unmarshal into yaml-tagged fields, so
	// they are read explicitly (same workaround as the slice handling above).
	if viper.IsSet("cache.max_size") {
		config.Cache.MaxSize = viper.GetInt64("cache.max_size")
	}
	if viper.IsSet("cache.ttl") {
		config.Cache.TTL = viper.GetDuration("cache.ttl")
	}
	if viper.IsSet("minify.max_code_nesting") {
		config.Minify.MaxCodeNesting = viper.GetInt("minify.max_code_nesting")
	}
	if viper.IsSet("watch.debounce") {
		config.Watch.Debounce = viper.GetDuration("watch.debounce")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Cache.Dir == "" {
		config.Cache.Dir = ".tplslim/cache"
	}
	if config.Cache.MaxSize == 0 {
		config.Cache.MaxSize = 32 * 1024 * 1024
	}
	if config.Cache.TTL == 0 {
		config.Cache.TTL = time.Hour
	}

	if config.Templates.Ext == "" {
		config.Templates.Ext = ".tpl"
	}
	if !strings.HasPrefix(config.Templates.Ext, ".") {
		config.Templates.Ext = "." + config.Templates.Ext
	}
	if len(config.Templates.ScanPaths) == 0 {
		config.Templates.ScanPaths = []string{"./views", "./templates"}
	}
	if len(config.Templates.ExcludePatterns) == 0 {
		config.Templates.ExcludePatterns = []string{"*.bak", "*.swp"}
	}

	if len(config.Minify.InlineElements) == 0 {
		config.Minify.InlineElements = append([]string(nil), minify.DefaultInlineElements...)
	}
	if len(config.Minify.ProtectedElements) == 0 {
		config.Minify.ProtectedElements = append([]string(nil), minify.DefaultProtectedElements...)
	}
	if config.Minify.MaxCodeNesting == 0 {
		config.Minify.MaxCodeNesting = 128
	}

	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 300 * time.Millisecond
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := validateTemplatesConfig(&config.Templates); err != nil {
		return fmt.Errorf("templates config: %w", err)
	}

	if config.Minify.MaxCodeNesting < 1 {
		return apperrors.NewValidationError("CONFIG_NESTING", "minify config: max_code_nesting must be positive")
	}

	return nil
}

// validateCacheConfig validates cache configuration values
func validateCacheConfig(config *CacheConfig) error {
	if config.Dir != "" {
		cleanPath := filepath.Clean(config.Dir)

		// Reject path traversal attempts
		if strings.Contains(cleanPath, "..") {
			return apperrors.NewValidationError("CONFIG_CACHE_DIR", fmt.Sprintf("dir contains path traversal: %s", config.Dir))
		}

		// Should be relative path for security
		if filepath.IsAbs(cleanPath) {
			return apperrors.NewValidationError("CONFIG_CACHE_DIR", fmt.Sprintf("dir should be relative path: %s", config.Dir))
		}
	}

	if config.MaxSize < 0 {
		return apperrors.NewValidationError("CONFIG_CACHE_SIZE", "max_size must not be negative")
	}

	return nil
}

// validateTemplatesConfig validates template discovery configuration values
func validateTemplatesConfig(config *TemplatesConfig) error {
	for _, path := range config.ScanPaths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid scan path '%s': %w", path, err)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return apperrors.NewValidationError("CONFIG_PATH", "empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return apperrors.NewValidationError("CONFIG_PATH", fmt.Sprintf("path contains traversal: %s", path))
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return apperrors.NewValidationError("CONFIG_PATH", fmt.Sprintf("path contains dangerous character: %s", char))
		}
	}

	return nil
}
