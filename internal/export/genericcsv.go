package export

import (
	"bytes"
	"io"
	"strings"

	money "github.com/fakturlu/faktur-accounting/internal/decimal"
)

var genericHeader = []string{
	"Date", "N° Facture", "Client", "Code Client", "HT", "TVA", "TTC",
	"Taux TVA", "Compte Ventes", "Compte TVA", "Journal", "Échéance", "Type",
}

// GenericCSVFormatter writes one row per invoice for spreadsheets
type GenericCSVFormatter struct{}

// NewGenericCSVFormatter creates the generic CSV formatter
func NewGenericCSVFormatter() *GenericCSVFormatter {
	return &GenericCSVFormatter{}
}

func (f *GenericCSVFormatter) Format() Format      { return FormatGenericCSV }
func (f *GenericCSVFormatter) Extension() string   { return "csv" }
func (f *GenericCSVFormatter) ContentType() string { return "text/csv; charset=utf-8" }

// Write renders the invoices with a UTF-8 BOM. Amounts keep their stored
// sign, so credit notes show negative totals.
func (f *GenericCSVFormatter) Write(w io.Writer, in Input) error {
	s := in.Settings

	var b strings.Builder
	writeCSVRow(&b, genericHeader...)

	for i := range in.Invoices {
		inv := &in.Invoices[i]
		rate := inv.MainVATRate()

		kind := "Facture"
		if inv.IsCreditNote() {
			kind = "Avoir"
		}

		writeCSVRow(&b,
			inv.IssuedAt.Format(csvDate),
			inv.Number,
			inv.Client.Name,
			s.ClientAccountingID(inv.Client),
			money.FormatComma(inv.TotalHT),
			money.FormatComma(inv.TotalVAT),
			money.FormatComma(inv.TotalTTC),
			money.FormatRateComma(rate),
			s.SalesAccount,
			s.VATAccount(rate),
			s.SalesJournal,
			csvDateOrEmpty(inv.DueAt),
			kind,
		)
	}

	var out bytes.Buffer
	out.Grow(len(utf8BOM) + b.Len())
	out.Write(utf8BOM)
	out.WriteString(b.String())
	return writeAll(w, FormatGenericCSV, out.Bytes())
}
