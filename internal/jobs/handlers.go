package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/fakturlu/faktur-accounting/internal/export"
	"github.com/fakturlu/faktur-accounting/internal/logging"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
)

// Handlers processes queued tasks
type Handlers struct {
	exports     *export.Service
	transmitter *peppol.Transmitter
	exportDir   string
	logger      *zap.Logger
}

// NewHandlers wires the task handlers. Each transmission task performs a
// single send; asynq schedules the retries.
func NewHandlers(exports *export.Service, transmitter *peppol.Transmitter, exportDir string, logger *zap.Logger) *Handlers {
	return &Handlers{
		exports:     exports,
		transmitter: transmitter,
		exportDir:   exportDir,
		logger:      logging.OrNop(logger),
	}
}

// HandleExportTask renders the requested formats and stores the file in the
// export directory. The job only completes once the file is in place.
func (h *Handlers) HandleExportTask(ctx context.Context, t *asynq.Task) error {
	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode export payload: %v: %w", err, asynq.SkipRetry)
	}

	formats := make([]export.Format, 0, len(payload.Formats))
	for _, name := range payload.Formats {
		f, err := export.ParseFormat(name)
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		formats = append(formats, f)
	}

	req := export.Request{
		TenantID: payload.TenantID,
		Seller:   payload.Seller,
		Settings: payload.Settings,
		Invoices: payload.Invoices,
		From:     payload.From,
		To:       payload.To,
	}

	if len(formats) == 0 {
		return fmt.Errorf("export task without format: %w", asynq.SkipRetry)
	}

	file, path, err := h.exports.Save(ctx, req, formats, h.exportDir)
	if err != nil {
		if isFinal(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	h.logger.Info("export task done", zap.String("file", path), zap.Stringer("job", file.JobID))
	return nil
}

// HandleTransmitTask sends one invoice. Permanent failures are not retried.
func (h *Handlers) HandleTransmitTask(ctx context.Context, t *asynq.Task) error {
	var payload TransmitPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode transmit payload: %v: %w", err, asynq.SkipRetry)
	}

	receipt, err := h.transmitter.Transmit(ctx, &payload.Seller, &payload.Invoice)
	if err != nil {
		var terr *model.TransmissionError
		if errors.As(err, &terr) && terr.Permanent {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	h.logger.Info("transmit task done",
		zap.String("invoice", receipt.InvoiceNumber),
		zap.String("document", receipt.DocumentID),
	)
	return nil
}

// isFinal reports export errors that a retry cannot fix
func isFinal(err error) bool {
	var valErr *model.ValidationError
	return errors.As(err, &valErr) ||
		errors.Is(err, model.ErrUnsupportedFormat) ||
		errors.Is(err, model.ErrNoInvoices) ||
		errors.Is(err, model.ErrUnbalanced)
}
