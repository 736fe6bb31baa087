package export_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakturlu/faktur-accounting/internal/accounting"
	"github.com/fakturlu/faktur-accounting/internal/export"
	"github.com/fakturlu/faktur-accounting/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func acmeInvoice() model.InvoiceSnapshot {
	due := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	return model.InvoiceSnapshot{
		ID:       1,
		Number:   "2026-0001",
		Type:     model.InvoiceTypeInvoice,
		Status:   model.InvoiceStatusFinalized,
		IssuedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		DueAt:    &due,
		TotalHT:  d("200"),
		TotalVAT: d("34"),
		TotalTTC: d("234"),
		Items: []model.LineItem{
			{Description: "Design", Quantity: d("2"), UnitPrice: d("100"), VATRate: d("17"), TotalHT: d("200"), TotalVAT: d("34")},
		},
		Client: model.ClientSnapshot{ID: 7, Name: "Acme", Type: model.ClientTypeB2B, CountryCode: "LU"},
	}
}

func creditNote() model.InvoiceSnapshot {
	inv := acmeInvoice()
	inv.Number = "AV-0001"
	inv.Type = model.InvoiceTypeCreditNote
	inv.DueAt = nil
	inv.TotalHT = d("-200")
	inv.TotalVAT = d("-34")
	inv.TotalTTC = d("-234")
	inv.Items[0].TotalHT = d("-200")
	inv.Items[0].TotalVAT = d("-34")
	return inv
}

func input(t *testing.T, invoices ...model.InvoiceSnapshot) export.Input {
	t.Helper()
	settings := model.DefaultAccountingSettings()
	entries, err := accounting.BuildEntries(invoices, settings)
	require.NoError(t, err)
	return export.Input{Entries: entries, Invoices: invoices, Settings: settings}
}

func render(t *testing.T, f export.Formatter, in export.Input) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf, in))
	return buf.Bytes()
}

func lines(data []byte) []string {
	s := strings.TrimSuffix(string(data), "\r\n")
	return strings.Split(s, "\r\n")
}

func TestSageBOB_Records(t *testing.T) {
	out := render(t, export.NewSageBOBFormatter(), input(t, acmeInvoice()))

	assert.True(t, bytes.HasSuffix(out, []byte("\r\n")))
	records := lines(out)
	require.Len(t, records, 3)

	for _, r := range records {
		assert.Len(t, r, export.BOBRecordLength)
	}

	client := records[0]
	assert.Equal(t, "01", client[0:2])
	assert.Equal(t, "VEN     ", client[2:10])
	assert.Equal(t, "20260115", client[10:18])
	assert.Equal(t, "2026-000", client[18:26], "piece is truncated to 8")
	assert.Equal(t, "401100  ", client[26:34])
	assert.Equal(t, "+00000000023400", client[34:49])
	assert.Equal(t, "Acme - 2026-0001"+strings.Repeat(" ", 24), client[49:89])
	assert.Equal(t, "20260214", client[89:97])
	assert.Equal(t, "C00007  ", client[97:105])

	vatRecord := records[1]
	assert.Equal(t, "-00000000003400", vatRecord[34:49])
	assert.Equal(t, strings.Repeat(" ", 8), vatRecord[89:97])
	assert.Equal(t, strings.Repeat(" ", 8), vatRecord[97:105])

	assert.Equal(t, "-00000000020000", records[2][34:49])
}

func TestSageBOB_CreditNoteSigns(t *testing.T) {
	records := lines(render(t, export.NewSageBOBFormatter(), input(t, creditNote())))
	require.Len(t, records, 3)

	assert.Equal(t, "-00000000023400", records[0][34:49])
	assert.Equal(t, "+00000000003400", records[1][34:49])
	assert.Equal(t, "+00000000020000", records[2][34:49])
}

func TestSageBOB_Latin1(t *testing.T) {
	inv := acmeInvoice()
	inv.Client.Name = "Café Müller €"

	out := render(t, export.NewSageBOBFormatter(), input(t, inv))
	records := lines(out)

	assert.Len(t, records[0], export.BOBRecordLength, "one byte per rune after encoding")
	assert.Contains(t, records[0], "Caf\xe9 M\xfcller \x1a")
	assert.NotContains(t, string(out), "\xc3", "no UTF-8 sequences remain")
}

func TestSage100_Rows(t *testing.T) {
	out := render(t, export.NewSage100Formatter(), input(t, acmeInvoice()))
	rows := lines(out)
	require.Len(t, rows, 4)

	assert.Equal(t, "Journal;Date;Compte général;Compte tiers;N° pièce;Libellé;Débit;Crédit;Échéance", rows[0])
	assert.Equal(t, "VEN;15/01/2026;401100;C00007;2026-0001;Acme - 2026-0001;234,00;;14/02/2026", rows[1])
	assert.Equal(t, "VEN;15/01/2026;461411;;2026-0001;TVA 17%;;34,00;", rows[2])
	assert.Equal(t, "VEN;15/01/2026;703000;;2026-0001;Acme - 2026-0001;;200,00;", rows[3])
	assert.False(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
}

func TestSage100_Quoting(t *testing.T) {
	inv := acmeInvoice()
	inv.Client.Name = `Dupont; "Fils"`

	rows := lines(render(t, export.NewSage100Formatter(), input(t, inv)))
	assert.Contains(t, rows[1], `;"Dupont; ""Fils"" - 2026-0001";`)
}

func TestGenericCSV_Rows(t *testing.T) {
	out := render(t, export.NewGenericCSVFormatter(), input(t, acmeInvoice(), creditNote()))

	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
	rows := lines(out[3:])
	require.Len(t, rows, 3, "one row per invoice")

	assert.Equal(t, "Date;N° Facture;Client;Code Client;HT;TVA;TTC;Taux TVA;Compte Ventes;Compte TVA;Journal;Échéance;Type", rows[0])
	assert.Equal(t, "15/01/2026;2026-0001;Acme;C00007;200,00;34,00;234,00;17;703000;461411;VEN;14/02/2026;Facture", rows[1])
	assert.Equal(t, "15/01/2026;AV-0001;Acme;C00007;-200,00;-34,00;-234,00;17;703000;461411;VEN;;Avoir", rows[2])
}

func TestGenericCSV_MainRateAndQuoting(t *testing.T) {
	inv := acmeInvoice()
	inv.Client.Name = "Dupont; Fils"
	inv.Items = append(inv.Items, model.LineItem{Description: "Vin", VATRate: d("14"), TotalHT: d("300"), TotalVAT: d("42")})
	inv.TotalHT = d("500")
	inv.TotalVAT = d("76")
	inv.TotalTTC = d("576")

	rows := lines(render(t, export.NewGenericCSVFormatter(), input(t, inv))[3:])
	require.Len(t, rows, 2)

	assert.Contains(t, rows[1], `;"Dupont; Fils";`)
	assert.Contains(t, rows[1], ";14;703000;461412;")
}

func TestFormatters_Idempotent(t *testing.T) {
	reg := export.NewRegistry()
	in := input(t, acmeInvoice(), creditNote())
	in.Seller = &model.Seller{Name: "Studio", VATRegime: model.VATRegimeAssujetti}
	in.From = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	in.To = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	in.GeneratedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, format := range reg.Formats() {
		t.Run(string(format), func(t *testing.T) {
			f, err := reg.Get(format)
			require.NoError(t, err)
			assert.Equal(t, render(t, f, in), render(t, f, in))
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := export.NewRegistry()
	assert.Equal(t, []export.Format{export.FormatSageBOB, export.FormatSage100, export.FormatGenericCSV, export.FormatFAIA}, reg.Formats())

	f, err := reg.Get(export.FormatSage100)
	require.NoError(t, err)
	assert.Equal(t, "csv", f.Extension())

	_, err = reg.Get("excel")
	require.ErrorIs(t, err, model.ErrUnsupportedFormat)

	var expErr *model.ExportError
	require.ErrorAs(t, err, &expErr)
	assert.Equal(t, "excel", expErr.Format)
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat(" SAGE_BOB ")
	require.NoError(t, err)
	assert.Equal(t, export.FormatSageBOB, f)

	_, err = export.ParseFormat("xlsx")
	require.ErrorIs(t, err, model.ErrUnsupportedFormat)
}

func TestFileName(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "sage_bob_20260101_20260331.txt", export.FileName(export.NewSageBOBFormatter(), from, to))
	assert.Equal(t, "faia_20260101_20260331.xml", export.FileName(export.NewFAIAFormatter(), from, to))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFormatter_WriteError(t *testing.T) {
	err := export.NewSage100Formatter().Write(failingWriter{}, input(t, acmeInvoice()))

	var expErr *model.ExportError
	require.ErrorAs(t, err, &expErr)
	assert.Equal(t, "sage100", expErr.Format)
	assert.Contains(t, err.Error(), "disk full")
}
