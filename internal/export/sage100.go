package export

import (
	"io"
	"strings"

	money "github.com/fakturlu/faktur-accounting/internal/decimal"
)

var sage100Header = []string{
	"Journal", "Date", "Compte général", "Compte tiers", "N° pièce",
	"Libellé", "Débit", "Crédit", "Échéance",
}

// Sage100Formatter writes one semicolon separated row per entry
type Sage100Formatter struct{}

// NewSage100Formatter creates the Sage 100 formatter
func NewSage100Formatter() *Sage100Formatter {
	return &Sage100Formatter{}
}

func (f *Sage100Formatter) Format() Format      { return FormatSage100 }
func (f *Sage100Formatter) Extension() string   { return "csv" }
func (f *Sage100Formatter) ContentType() string { return "text/csv; charset=utf-8" }

func (f *Sage100Formatter) Write(w io.Writer, in Input) error {
	var b strings.Builder
	writeCSVRow(&b, sage100Header...)

	for _, e := range in.Entries {
		writeCSVRow(&b,
			e.JournalCode,
			e.Date.Format(csvDate),
			e.GeneralAccount,
			e.ThirdPartyCode,
			e.PieceReference,
			e.Label,
			money.FormatCommaOrEmpty(e.Debit),
			money.FormatCommaOrEmpty(e.Credit),
			csvDateOrEmpty(e.DueDate),
		)
	}
	return writeAll(w, FormatSage100, []byte(b.String()))
}
