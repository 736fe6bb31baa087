package server

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

// ScenarioRequest is the body of the VAT scenario endpoint
type ScenarioRequest struct {
	VATRegime       model.VATRegime  `json:"vat_regime" binding:"required,oneof=franchise assujetti"`
	ClientCountry   string           `json:"client_country"`
	ClientType      model.ClientType `json:"client_type" binding:"omitempty,oneof=b2b b2c"`
	ClientVATNumber string           `json:"client_vat_number"`
}

// VATNumberRequest is the body of the VAT number check
type VATNumberRequest struct {
	VATNumber string `json:"vat_number" binding:"required"`
	Country   string `json:"country"`
}

// VATNumberResponse reports the normalized number and its validity
type VATNumberResponse struct {
	VATNumber string `json:"vat_number"`
	Valid     bool   `json:"valid"`
}

// EntriesRequest carries the invoices to journalize
type EntriesRequest struct {
	Settings *model.AccountingSettings `json:"settings"`
	Invoices []model.InvoiceSnapshot   `json:"invoices" binding:"required,min=1"`
}

// EntriesResponse lists the generated lines with their totals
type EntriesResponse struct {
	Entries     []model.AccountingEntry `json:"entries"`
	TotalDebit  decimal.Decimal         `json:"total_debit"`
	TotalCredit decimal.Decimal         `json:"total_credit"`
}

// ExportRequest is the body of the export endpoint
type ExportRequest struct {
	TenantID int64                     `json:"tenant_id"`
	Seller   *model.Seller             `json:"seller"`
	Settings *model.AccountingSettings `json:"settings"`
	Invoices []model.InvoiceSnapshot   `json:"invoices"`
	From     time.Time                 `json:"from"`
	To       time.Time                 `json:"to"`
}

// PeppolRequest pairs an invoice with its seller
type PeppolRequest struct {
	Seller  model.Seller          `json:"seller"`
	Invoice model.InvoiceSnapshot `json:"invoice"`
}

// QueuedResponse is returned when work was handed to the worker
type QueuedResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}

// StatusResponse reports a Peppol document status
type StatusResponse struct {
	DocumentID string `json:"document_id"`
	Provider   string `json:"provider"`
	Status     string `json:"status"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}
