package peppol

import (
	"context"
	"fmt"

	"github.com/fakturlu/faktur-accounting/internal/config"
	"github.com/fakturlu/faktur-accounting/internal/model"
)

// Provider names
const (
	ProviderSimulator = "simulator"
	ProviderStorecove = "storecove"
)

// SendResult is the access point answer to a submission
type SendResult struct {
	Success      bool           `json:"success"`
	DocumentID   string         `json:"document_id,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	ResponseData map[string]any `json:"response_data,omitempty"`
}

// AccessPoint submits UBL documents to the Peppol network.
//
// SendInvoice returns an error only when the call itself did not complete
// (network failure, server error); a rejected document is reported through
// SendResult.
type AccessPoint interface {
	SendInvoice(ctx context.Context, inv *model.InvoiceSnapshot, xml []byte) (*SendResult, error)
	GetTransmissionStatus(ctx context.Context, documentID string) (string, error)
	IsConfigured() bool
	ProviderName() string
}

// NewAccessPoint builds the provider selected in the configuration
func NewAccessPoint(cfg config.Peppol) (AccessPoint, error) {
	switch cfg.Provider {
	case ProviderSimulator, "":
		return NewSimulator(
			WithSuccessRate(cfg.SimulatorSuccessRate),
			WithDelay(cfg.SimulatorDelay),
		), nil
	case ProviderStorecove:
		return NewStorecoveClient(cfg.StorecoveAPIKey, cfg.StorecoveLegalEntityID,
			WithBaseURL(cfg.StorecoveBaseURL),
			WithTimeout(cfg.StorecoveTimeout),
		), nil
	default:
		return nil, fmt.Errorf("peppol: unknown provider %q", cfg.Provider)
	}
}
