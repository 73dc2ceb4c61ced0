// Package cmd provides the folio command-line interface.
//
// Configuration is collected by Viper from several sources, highest priority
// first:
//  1. Command-line flags (--port, --content, ...)
//  2. FOLIO_<SECTION>_<OPTION> environment variables, e.g. FOLIO_SERVER_PORT
//  3. The configuration file: --config, else FOLIO_CONFIG_FILE, else
//     .folio.yml in the working directory
//  4. Built-in defaults
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A personal website server for Markdown posts and projects",
	Long: `folio serves a personal website built from Markdown posts and portfolio
projects described by JSON indexes.

Pages are rendered on every request, so editing a post or an index is visible
on the next reload without restarting the server. Navigation inside the site
swaps HTML fragments with htmx; direct visits get a page shell that loads the
same fragment.

Quick Start:
  folio serve                     Serve ./posts and ./projects on :3000
  folio serve --live-reload       Also reload browsers when content changes
  folio check                     Validate indexes and bodies
  folio config show               Print the effective configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .folio.yml, can also use FOLIO_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("content", "c", ".", "content root holding the posts and projects directories")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	cobra.CheckErr(bindFlags(viper.GetViper(), rootCmd.PersistentFlags()))
}

// initConfig points viper at the configuration file and environment.
func initConfig() {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case os.Getenv("FOLIO_CONFIG_FILE") != "":
		viper.SetConfigFile(os.Getenv("FOLIO_CONFIG_FILE"))
	default:
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".folio")
	}

	viper.SetEnvPrefix("FOLIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
		// No .folio.yml; defaults, environment and flags apply.
	default:
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
	}
}

// loadConfig loads and validates the configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg.Log.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	loggerConfig := logging.DefaultConfig()
	loggerConfig.Level = level
	loggerConfig.Format = cfg.Log.Format
	loggerConfig.Component = "folio"
	return logging.NewLogger(loggerConfig), nil
}
