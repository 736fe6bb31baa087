// Package export renders accounting entries into the import formats of
// downstream accounting software.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

// Format identifies an export file layout
type Format string

const (
	FormatSageBOB    Format = "sage_bob"
	FormatSage100    Format = "sage100"
	FormatGenericCSV Format = "generic_csv"
	FormatFAIA       Format = "faia"
)

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatSageBOB, FormatSage100, FormatGenericCSV, FormatFAIA:
		return f, nil
	default:
		return "", model.NewExportError(s, "unknown format", model.ErrUnsupportedFormat)
	}
}

// Input is everything a formatter may need. Entries are derived from Invoices.
type Input struct {
	Entries  []model.AccountingEntry
	Invoices []model.InvoiceSnapshot
	Settings model.AccountingSettings

	// used by FAIA only
	Seller      *model.Seller
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
}

// Formatter writes one export format
type Formatter interface {
	// Format returns the format identifier
	Format() Format

	// Extension returns the file extension without the dot
	Extension() string

	// ContentType returns the MIME type of the output
	ContentType() string

	// Write renders the whole file. Nothing is written when rendering fails.
	Write(w io.Writer, in Input) error
}

// Registry holds the available formatters
type Registry struct {
	formatters []Formatter
}

// NewRegistry creates registry with all built-in formatters
func NewRegistry() *Registry {
	return &Registry{
		formatters: []Formatter{
			NewSageBOBFormatter(),
			NewSage100Formatter(),
			NewGenericCSVFormatter(),
			NewFAIAFormatter(),
		},
	}
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, error) {
	for _, f := range r.formatters {
		if f.Format() == format {
			return f, nil
		}
	}
	return nil, model.NewExportError(string(format), "no formatter registered", model.ErrUnsupportedFormat)
}

// Register adds a formatter, replacing any existing one for the same format
func (r *Registry) Register(f Formatter) {
	for i, existing := range r.formatters {
		if existing.Format() == f.Format() {
			r.formatters[i] = f
			return
		}
	}
	r.formatters = append(r.formatters, f)
}

// Formats lists registered formats in registration order
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.formatters))
	for _, f := range r.formatters {
		out = append(out, f.Format())
	}
	return out
}

// FileName builds the download name of an export
func FileName(f Formatter, from, to time.Time) string {
	return fmt.Sprintf("%s_%s_%s.%s", f.Format(), from.Format("20060102"), to.Format("20060102"), f.Extension())
}

func writeAll(w io.Writer, format Format, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return model.NewExportError(string(format), "write output", err)
	}
	return nil
}
