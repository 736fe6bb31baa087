package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fakturlu/faktur-accounting/internal/export"
	"github.com/fakturlu/faktur-accounting/internal/metrics"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
	"github.com/fakturlu/faktur-accounting/internal/store"
)

// app holds the services shared by the commands
type app struct {
	store       *store.Store
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	exports     *export.Service
	transmitter *peppol.Transmitter
}

// newApp wires services from the loaded configuration. Job history is kept
// in the database only when persist is set.
func newApp(ctx context.Context, persist bool, transmitterOpts ...peppol.TransmitterOption) (*app, error) {
	a := &app{registry: prometheus.NewRegistry()}
	a.metrics = metrics.New(a.registry)

	exportOpts := []export.ServiceOption{export.WithMetrics(a.metrics), export.WithLogger(logger)}
	peppolOpts := []peppol.TransmitterOption{
		peppol.WithMaxAttempts(cfg.Peppol.MaxAttempts),
		peppol.WithBackoff(cfg.Peppol.Backoff),
		peppol.WithMetrics(a.metrics),
		peppol.WithLogger(logger),
	}

	if persist {
		s, err := store.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.store = s
		exportOpts = append(exportOpts, export.WithJobRecorder(s))
		peppolOpts = append(peppolOpts, peppol.WithRecorder(s))
		printVerbose("Recording jobs in %s\n", store.Dialector(cfg.DatabaseDSN).Name())
	}

	ap, err := peppol.NewAccessPoint(cfg.Peppol)
	if err != nil {
		a.Close()
		return nil, err
	}
	if !ap.IsConfigured() {
		printVerbose("Peppol provider %s is not configured\n", ap.ProviderName())
	}

	a.exports = export.NewService(exportOpts...)
	a.transmitter = peppol.NewTransmitter(ap, append(peppolOpts, transmitterOpts...)...)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			printVerbose("close store: %v\n", err)
		}
	}
	_ = logger.Sync()
}

func requireDocumentSeller(doc *Document) error {
	if doc.Seller == nil {
		return fmt.Errorf("input document has no seller")
	}
	return nil
}
