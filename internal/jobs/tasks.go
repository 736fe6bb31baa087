// Package jobs runs exports and Peppol transmissions as asynq background tasks.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

const (
	// QueueDefault holds export tasks
	QueueDefault = "default"
	// QueuePeppol holds transmissions so a slow access point does not block exports
	QueuePeppol = "peppol"

	TaskExportGenerate = "export:generate"
	TaskPeppolTransmit = "peppol:transmit"
)

// ExportPayload describes one export run
type ExportPayload struct {
	TenantID int64                    `json:"tenant_id"`
	Formats  []string                 `json:"formats"`
	Seller   *model.Seller            `json:"seller,omitempty"`
	Settings model.AccountingSettings `json:"settings"`
	Invoices []model.InvoiceSnapshot  `json:"invoices"`
	From     time.Time                `json:"from"`
	To       time.Time                `json:"to"`
}

// TransmitPayload describes one invoice to deliver over Peppol
type TransmitPayload struct {
	Seller  model.Seller          `json:"seller"`
	Invoice model.InvoiceSnapshot `json:"invoice"`
}

// NewExportTask constructs an export task
func NewExportTask(payload ExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportGenerate, data, asynq.Queue(QueueDefault), asynq.MaxRetry(2)), nil
}

// NewTransmitTask constructs a transmission task allowed maxAttempts sends
func NewTransmitTask(payload TransmitPayload, maxAttempts int) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPeppolTransmit, data,
		asynq.Queue(QueuePeppol),
		asynq.MaxRetry(max(maxAttempts-1, 0)),
	), nil
}

// RetryDelay waits a fixed backoff between attempts
func RetryDelay(backoff time.Duration) asynq.RetryDelayFunc {
	return func(int, error, *asynq.Task) time.Duration {
		return backoff
	}
}
