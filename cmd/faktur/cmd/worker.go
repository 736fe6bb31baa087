package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakturlu/faktur-accounting/internal/jobs"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
)

var workerStore bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued exports and Peppol transmissions",
	Long: `Start the background worker consuming the "default" (exports) and
"peppol" (transmissions) queues from redis.

Each transmission task performs a single send; transient failures are
retried by the queue after FAKTUR_PEPPOL_BACKOFF, up to
FAKTUR_PEPPOL_MAX_ATTEMPTS sends in total. Export files are written to
FAKTUR_EXPORT_DIR.

Examples:
  faktur worker --record`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().BoolVar(&workerStore, "record", true, "Record export jobs and transmissions in the database")
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the queue owns the retry loop
	a, err := newApp(ctx, workerStore, peppol.WithMaxAttempts(1))
	if err != nil {
		return err
	}
	defer a.Close()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts(),
		Concurrency: cfg.WorkerConcurrency,
		Backoff:     cfg.Peppol.Backoff,
		Handlers:    jobs.NewHandlers(a.exports, a.transmitter, cfg.ExportDir, logger),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting worker",
		zap.String("redis", cfg.RedisAddr),
		zap.Int("concurrency", cfg.WorkerConcurrency),
		zap.String("peppol_provider", a.transmitter.AccessPoint().ProviderName()),
	)
	return worker.Run(ctx)
}
