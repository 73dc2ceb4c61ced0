package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/folio/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the website",
	Long: `Serve the website from the content root.

Every request reads the index and body it needs, so edits are picked up on the
next request. With --live-reload, open browsers also refresh the current page
whenever a file below the content root or the assets directory changes.

Examples:
  folio serve                          # Serve ./posts and ./projects on 0.0.0.0:3000
  folio serve --port 8080 --content site
  folio serve --live-reload --environment development`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to serve on")
	serveCmd.Flags().StringP("environment", "e", "production", "Environment (development, production)")
	serveCmd.Flags().StringP("assets", "a", "assets", "Directory of static assets")
	serveCmd.Flags().String("title", "folio", "Site title")
	serveCmd.Flags().Bool("live-reload", false, "Reload browsers when content changes")

	cobra.CheckErr(bindFlags(viper.GetViper(), serveCmd.Flags()))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s\n", cfg.Site.Title, cfg.Address())

	if err := srv.Start(ctx); err != nil {
		logger.Error(context.WithoutCancel(ctx), err, "server failed")
		return err
	}
	return nil
}
