package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

// Document is the JSON input accepted by the commands. A single invoice may
// be given under "invoice" instead of "invoices".
type Document struct {
	Seller   *model.Seller             `json:"seller"`
	Settings *model.AccountingSettings `json:"settings"`
	Invoice  *model.InvoiceSnapshot    `json:"invoice"`
	Invoices []model.InvoiceSnapshot   `json:"invoices"`
}

// AllInvoices merges the single and list forms
func (d *Document) AllInvoices() []model.InvoiceSnapshot {
	if d.Invoice == nil {
		return d.Invoices
	}
	return append([]model.InvoiceSnapshot{*d.Invoice}, d.Invoices...)
}

// AccountingSettings returns the configured settings or the PCN defaults
func (d *Document) AccountingSettings() model.AccountingSettings {
	if d.Settings == nil {
		return model.DefaultAccountingSettings()
	}
	return *d.Settings
}

// FindInvoice returns the invoice with the given number, or the only one
func (d *Document) FindInvoice(number string) (*model.InvoiceSnapshot, error) {
	invoices := d.AllInvoices()
	if number == "" {
		if len(invoices) != 1 {
			return nil, fmt.Errorf("document holds %d invoices, pick one with --number", len(invoices))
		}
		return &invoices[0], nil
	}
	for i := range invoices {
		if invoices[i].Number == number {
			return &invoices[i], nil
		}
	}
	return nil, fmt.Errorf("invoice %s not found", number)
}

func loadDocument(path string) (*Document, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	printVerbose("Loaded %d invoices from %s\n", len(doc.AllInvoices()), path)
	return &doc, nil
}

func parseDate(name, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD", name, value)
	}
	return t, nil
}

// openOutput returns stdout when path is empty
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
