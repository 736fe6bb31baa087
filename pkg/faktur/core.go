package faktur

import (
	"context"

	"github.com/fakturlu/faktur-accounting/internal/accounting"
	"github.com/fakturlu/faktur-accounting/internal/config"
	"github.com/fakturlu/faktur-accounting/internal/export"
	"github.com/fakturlu/faktur-accounting/internal/faia"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

var (
	resolver = vat.NewResolver()
	exporter = export.NewService()
)

// DefaultAccountingSettings returns the PCN account plan used when a seller
// has not configured one
func DefaultAccountingSettings() AccountingSettings {
	return model.DefaultAccountingSettings()
}

// DetermineScenario picks the VAT treatment of a sale
func DetermineScenario(regime VATRegime, clientCountry string, clientType ClientType, clientVATNumber string) Scenario {
	return resolver.DetermineScenario(regime, clientCountry, clientType, clientVATNumber)
}

// ScenarioFor resolves the scenario of an invoice addressed to client
func ScenarioFor(seller *Seller, client ClientSnapshot) Scenario {
	return resolver.ForInvoice(seller, client)
}

// ValidateVATNumber checks the format of an EU VAT number. An empty
// expectedCountry accepts any prefix.
func ValidateVATNumber(number, expectedCountry string) bool {
	return vat.ValidateVATNumber(number, expectedCountry)
}

// BuildEntries turns finalized invoices into balanced journal lines
func BuildEntries(invoices []InvoiceSnapshot, settings AccountingSettings) ([]AccountingEntry, error) {
	return accounting.BuildEntries(invoices, settings)
}

// Export renders one accounting export. No job history is kept.
func Export(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	return exporter.Generate(ctx, req)
}

// ExportArchive renders several formats into one ZIP file
func ExportArchive(ctx context.Context, req ExportRequest, formats ...ExportFormat) (*ExportFile, error) {
	return exporter.GenerateArchive(ctx, req, formats)
}

// ExportFormats lists the supported export formats
func ExportFormats() []ExportFormat {
	return exporter.Registry().Formats()
}

// GenerateFAIA renders the SAF-T Luxembourg audit file of a period
func GenerateFAIA(req ExportRequest) ([]byte, error) {
	return faia.Generate(faia.Input{
		Seller:      req.Seller,
		From:        req.From,
		To:          req.To,
		GeneratedAt: req.GeneratedAt,
		Invoices:    export.SelectInvoices(req.Invoices, req.From, req.To),
		Settings:    req.Settings,
	})
}

// GenerateUBL renders a Peppol BIS Billing 3.0 document, resolving the VAT
// scenario from the seller and client
func GenerateUBL(seller *Seller, inv *InvoiceSnapshot) ([]byte, error) {
	if seller == nil || inv == nil {
		return peppol.GenerateUBL(seller, inv, Scenario{})
	}
	return peppol.GenerateUBL(seller, inv, ScenarioFor(seller, inv.Client))
}

// Sender delivers invoices over Peppol
type Sender struct {
	transmitter *peppol.Transmitter
}

// PeppolOptions selects and configures the access point
type PeppolOptions = config.Peppol

// DefaultPeppolOptions uses the simulator with three attempts
func DefaultPeppolOptions() PeppolOptions {
	return PeppolOptions{
		Provider:             peppol.ProviderSimulator,
		MaxAttempts:          peppol.DefaultMaxAttempts,
		Backoff:              peppol.DefaultBackoff,
		StorecoveBaseURL:     peppol.DefaultStorecoveURL,
		StorecoveTimeout:     peppol.DefaultTimeout,
		SimulatorSuccessRate: 0.9,
	}
}

// NewSender creates a sender for the configured provider
func NewSender(opts PeppolOptions) (*Sender, error) {
	ap, err := peppol.NewAccessPoint(opts)
	if err != nil {
		return nil, err
	}
	return &Sender{
		transmitter: peppol.NewTransmitter(ap,
			peppol.WithMaxAttempts(opts.MaxAttempts),
			peppol.WithBackoff(opts.Backoff),
		),
	}, nil
}

// Send transmits one invoice, retrying transient failures
func (s *Sender) Send(ctx context.Context, seller *Seller, inv *InvoiceSnapshot) (*Receipt, error) {
	return s.transmitter.Transmit(ctx, seller, inv)
}

// SendBatch transmits invoices concurrently. Results keep the input order;
// the first error is returned alongside the receipts that succeeded.
func (s *Sender) SendBatch(ctx context.Context, seller *Seller, invoices []InvoiceSnapshot) ([]*Receipt, error) {
	receipts := make([]*Receipt, len(invoices))
	errCh := make(chan error, len(invoices))

	for i := range invoices {
		go func(idx int) {
			receipt, err := s.Send(ctx, seller, &invoices[idx])
			if err != nil {
				errCh <- err
				return
			}
			receipts[idx] = receipt
			errCh <- nil
		}(i)
	}

	var firstErr error
	for range invoices {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return receipts, firstErr
}

// Status queries the delivery status of a sent document
func (s *Sender) Status(ctx context.Context, documentID string) (string, error) {
	return s.transmitter.Status(ctx, documentID)
}

// ProviderName reports the access point in use
func (s *Sender) ProviderName() string {
	return s.transmitter.AccessPoint().ProviderName()
}
