package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakturlu/faktur-accounting/internal/server"
)

var (
	serverAddr  string
	serverDebug bool
	serverQueue bool
	serverStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server exposing the accounting core.

The API provides endpoints for:
  - POST /api/v1/vat/scenario          - Resolve a VAT scenario
  - POST /api/v1/vat/validate-number   - Validate a VAT number
  - POST /api/v1/entries               - Build journal lines
  - POST /api/v1/exports/:format       - Generate an export (?async=true to queue)
  - POST /api/v1/peppol/ubl            - Render UBL
  - POST /api/v1/peppol/send           - Send through the access point
  - GET  /api/v1/peppol/status/:id     - Delivery status
  - GET  /health                       - Health check
  - GET  /metrics                      - Prometheus metrics

Examples:
  # Start server with settings from the environment
  faktur serve

  # Hand Peppol sends and async exports to the worker
  faktur serve --queue --record`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default: FAKTUR_HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().BoolVar(&serverQueue, "queue", false, "Enqueue Peppol sends and async exports in redis")
	serveCmd.Flags().BoolVar(&serverStore, "record", false, "Record export jobs and transmissions in the database")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, serverStore)
	if err != nil {
		return err
	}
	defer a.Close()

	config := &server.Config{
		Address:      cfg.HTTPAddr,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Debug:        serverDebug,
	}
	if serverAddr != "" {
		config.Address = serverAddr
	}

	opts := []server.Option{
		server.WithExportService(a.exports),
		server.WithTransmitter(a.transmitter),
		server.WithGatherer(a.registry),
		server.WithLogger(logger),
	}
	if serverQueue {
		client := newQueueClient()
		defer client.Close()
		opts = append(opts, server.WithQueue(client))
	}

	srv := server.NewServer(config, opts...)

	logger.Info("starting server",
		zap.String("address", config.Address),
		zap.String("peppol_provider", a.transmitter.AccessPoint().ProviderName()),
		zap.Bool("queue", serverQueue),
	)
	fmt.Fprintf(os.Stderr, "Starting server on %s\n", config.Address)

	if err := srv.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Server stopped")
	return nil
}
