// Package faktur provides a public API for the faktur.lu accounting core.
//
// It exposes VAT scenario resolution, journal line generation, accounting
// exports (Sage BOB, Sage 100, generic CSV, FAIA) and Peppol UBL
// generation and delivery for Luxembourg sellers.
//
// Example usage:
//
//	scenario := faktur.ScenarioFor(seller, invoice.Client)
//	xml, err := faktur.GenerateUBL(seller, invoice)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(scenario.Key())
package faktur

import (
	"github.com/fakturlu/faktur-accounting/internal/export"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

// Re-export core types for public API
type (
	Seller             = model.Seller
	Address            = model.Address
	ClientSnapshot     = model.ClientSnapshot
	InvoiceSnapshot    = model.InvoiceSnapshot
	LineItem           = model.LineItem
	AccountingSettings = model.AccountingSettings
	AccountingEntry    = model.AccountingEntry
	VATRegime          = model.VATRegime
	ClientType         = model.ClientType
	InvoiceType        = model.InvoiceType
	InvoiceStatus      = model.InvoiceStatus

	Scenario    = vat.Scenario
	ScenarioKey = vat.ScenarioKey

	ExportFormat  = export.Format
	ExportRequest = export.Request
	ExportFile    = export.File

	SendResult = peppol.SendResult
	Receipt    = peppol.Receipt
)

// Re-export scenario keys
const (
	ScenarioB2BIntraEU = vat.ScenarioB2BIntraEU
	ScenarioB2BLU      = vat.ScenarioB2BLU
	ScenarioB2CLU      = vat.ScenarioB2CLU
	ScenarioFranchise  = vat.ScenarioFranchise
	ScenarioExport     = vat.ScenarioExport
)

// Re-export enumerations
const (
	VATRegimeFranchise = model.VATRegimeFranchise
	VATRegimeAssujetti = model.VATRegimeAssujetti

	ClientTypeB2B = model.ClientTypeB2B
	ClientTypeB2C = model.ClientTypeB2C

	InvoiceTypeInvoice    = model.InvoiceTypeInvoice
	InvoiceTypeCreditNote = model.InvoiceTypeCreditNote

	FormatSageBOB    = export.FormatSageBOB
	FormatSage100    = export.FormatSage100
	FormatGenericCSV = export.FormatGenericCSV
	FormatFAIA       = export.FormatFAIA
)

// Re-export error types
type (
	ValidationError   = model.ValidationError
	ExportError       = model.ExportError
	TransmissionError = model.TransmissionError
)

// Re-export sentinel errors
var (
	ErrUnbalanced            = model.ErrUnbalanced
	ErrUnsupportedFormat     = model.ErrUnsupportedFormat
	ErrNoInvoices            = model.ErrNoInvoices
	ErrProviderNotConfigured = model.ErrProviderNotConfigured
)
