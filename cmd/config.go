package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/folio/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage folio configuration",
	Long: `Manage folio configuration files and settings.

Examples:
  folio config show                  # Print the effective configuration
  folio config validate              # Validate the effective configuration
  folio config init                  # Write a .folio.yml holding the defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file holding the defaults",
	RunE:  runConfigInit,
}

var (
	configInitOutput string
	configInitForce  bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configValidateCmd, configInitCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", ".folio.yml", "File to write")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(cfg)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ configuration is valid (serving %s from %s)\n", cfg.Address(), cfg.Content.Root)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if !configInitForce {
		if _, err := os.Stat(configInitOutput); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configInitOutput)
		}
	}

	data, err := marshalConfig(config.Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(configInitOutput, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configInitOutput, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configInitOutput)
	return nil
}

func marshalConfig(cfg *config.Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return data, nil
}
