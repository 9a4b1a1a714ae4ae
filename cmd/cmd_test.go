package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tplslim/tplslim/internal/config"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"minify", "watch", "clean", "config", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestCollectTemplatesWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("<div></div>"), 0644))
		return path
	}

	a := write("page.tpl")
	b := write("sub/inner.tpl")
	write("notes.txt")
	write("old.tpl.bak")

	cfg := config.Default()
	paths, err := collectTemplates(cfg, []string{dir})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{a, b}, paths)
}

func TestCollectTemplatesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<div></div>"), 0644))

	cfg := config.Default()

	// Explicit file arguments bypass the extension filter.
	paths, err := collectTemplates(cfg, []string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)

	// Explicit missing arguments are an error, unlike configured paths.
	_, err = collectTemplates(cfg, []string{filepath.Join(dir, "missing.tpl")})
	assert.Error(t, err)
}

func TestCollectTemplatesSkipsMissingConfiguredPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Templates.ScanPaths = []string{filepath.Join(t.TempDir(), "absent")}

	paths, err := collectTemplates(cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestValidateChoice(t *testing.T) {
	validate := ValidateChoice("text", "json")

	assert.NoError(t, validate("text"))
	assert.NoError(t, validate("json"))
	assert.Error(t, validate("yaml"))
}

func TestMinifyFormatFlagRejectsUnknownValue(t *testing.T) {
	flag := minifyCmd.Flags().Lookup("format")
	require.NotNil(t, flag)

	assert.Error(t, flag.Value.Set("xml"))
	assert.NoError(t, flag.Value.Set("json"))
	require.NoError(t, flag.Value.Set("text"))
}

func TestConfigFlagRejectsMissingFile(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)

	assert.Error(t, flag.Value.Set(filepath.Join(t.TempDir(), "absent.yml")))

	path := filepath.Join(t.TempDir(), "present.yml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n"), 0644))
	assert.NoError(t, flag.Value.Set(path))
	require.NoError(t, flag.Value.Set(""))
}

func TestValidateFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "present.yml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n"), 0644))

	assert.NoError(t, ValidateFileExists(""))
	assert.NoError(t, ValidateFileExists(path))
	assert.Error(t, ValidateFileExists(filepath.Join(t.TempDir(), "absent.yml")))
}

func TestExcluded(t *testing.T) {
	patterns := []string{"*.bak", "*.swp"}

	assert.True(t, excluded(patterns, "views/page.tpl.bak"))
	assert.True(t, excluded(patterns, ".page.tpl.swp"))
	assert.False(t, excluded(patterns, "views/page.tpl"))
}
