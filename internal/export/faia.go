package export

import (
	"io"

	"github.com/fakturlu/faktur-accounting/internal/faia"
	"github.com/fakturlu/faktur-accounting/internal/model"
)

// FAIAFormatter adapts the audit file generator to the Formatter interface
type FAIAFormatter struct {
	Software faia.Software
}

// NewFAIAFormatter creates the FAIA formatter
func NewFAIAFormatter() *FAIAFormatter {
	return &FAIAFormatter{Software: faia.DefaultSoftware}
}

func (f *FAIAFormatter) Format() Format      { return FormatFAIA }
func (f *FAIAFormatter) Extension() string   { return "xml" }
func (f *FAIAFormatter) ContentType() string { return "application/xml; charset=utf-8" }

func (f *FAIAFormatter) Write(w io.Writer, in Input) error {
	data, err := faia.Generate(faia.Input{
		Seller:      in.Seller,
		From:        in.From,
		To:          in.To,
		GeneratedAt: in.GeneratedAt,
		Invoices:    in.Invoices,
		Settings:    in.Settings,
		Software:    f.Software,
	})
	if err != nil {
		return model.NewExportError(string(FormatFAIA), "generate audit file", err)
	}
	return writeAll(w, FormatFAIA, data)
}
