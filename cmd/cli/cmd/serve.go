// Package cmd - serve command
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aurora-quote/api"
	"aurora-quote/internal/config"
	"aurora-quote/internal/logging"
)

var serveAddr string

// serveCmd runs the JSON API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quotes over HTTP",
	Long: `Start the JSON API.

Endpoints:
  POST /api/quote      build a quote
  GET  /api/packages   packages with default totals
  GET  /api/catalog    service definitions
  GET  /api/health     catalog health
  GET  /api/version    version information`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "server address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Named("api")
	server := api.NewServer(e, Version, config.Get().Pricing.Currency, logger)

	w := newWriter(cmd)
	w.Success("aurora-quote API v%s listening on %s", Version, serveAddr)
	logger.Info("server starting", zap.String("addr", serveAddr), zap.Bool("catalog_broken", e.CatalogBroken()))

	return server.ListenAndServe(ctx, serveAddr)
}
