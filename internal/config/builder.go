package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultConfigHeader is written above the generated YAML so a fresh config
// file documents where overrides come from.
const defaultConfigHeader = `# tplslim configuration
# Values here can be overridden with TPLSLIM_* environment variables
# (e.g. TPLSLIM_CACHE_DIR) or command-line flags.
`

// Default returns a fully-populated configuration with built-in defaults.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// WriteDefault writes a commented default configuration file to path.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	return os.WriteFile(path, append([]byte(defaultConfigHeader), data...), 0644)
}

// Render returns the configuration serialized as YAML, used by the
// "config show" command.
func Render(config *Config) (string, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
