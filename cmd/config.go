package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tplslim/tplslim/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .tplslim.yml",
	Long: `Write a commented default configuration file to the current directory.
Fails if the file already exists.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration after merging the config file,
environment variables, and defaults.`,
	RunE: runConfigShow,
}

var configInitPath string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().StringVarP(&configInitPath, "output", "o", ".tplslim.yml", "Path for the generated config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(configInitPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", configInitPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rendered, err := config.Render(cfg)
	if err != nil {
		return err
	}

	fmt.Print(rendered)
	return nil
}
