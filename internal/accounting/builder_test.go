package accounting_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakturlu/faktur-accounting/internal/accounting"
	money "github.com/fakturlu/faktur-accounting/internal/decimal"
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

func acmeCreditNote() model.InvoiceSnapshot {
	inv := acmeInvoice()
	inv.Number = "AV-2026-0001"
	inv.Type = model.InvoiceTypeCreditNote
	inv.TotalHT = d("-200")
	inv.TotalVAT = d("-34")
	inv.TotalTTC = d("-234")
	inv.Items[0].TotalHT = d("-200")
	inv.Items[0].TotalVAT = d("-34")
	return inv
}

func TestBuildEntries_Invoice(t *testing.T) {
	settings := model.DefaultAccountingSettings()

	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{acmeInvoice()}, settings)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	client, vatLine, sales := entries[0], entries[1], entries[2]

	assert.Equal(t, "401100", client.GeneralAccount)
	assert.Equal(t, "C00007", client.ThirdPartyCode)
	assert.Equal(t, "Acme - 2026-0001", client.Label)
	assert.True(t, client.Debit.Equal(d("234")))
	assert.True(t, client.Credit.IsZero())
	require.NotNil(t, client.DueDate)

	assert.Equal(t, "461411", vatLine.GeneralAccount)
	assert.Equal(t, "TVA 17%", vatLine.Label)
	assert.True(t, vatLine.Credit.Equal(d("34")))
	assert.True(t, vatLine.Debit.IsZero())
	assert.Nil(t, vatLine.DueDate)
	assert.Empty(t, vatLine.ThirdPartyCode)

	assert.Equal(t, "703000", sales.GeneralAccount)
	assert.True(t, sales.Credit.Equal(d("200")))
	assert.Nil(t, sales.DueDate)

	for _, e := range entries {
		assert.Equal(t, "VEN", e.JournalCode)
		assert.Equal(t, "2026-0001", e.PieceReference)
		assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), e.Date)
	}
}

func TestBuildEntries_CreditNoteSwapsSides(t *testing.T) {
	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{acmeCreditNote()}, model.DefaultAccountingSettings())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].Credit.Equal(d("234")))
	assert.True(t, entries[0].Debit.IsZero())
	assert.True(t, entries[1].Debit.Equal(d("34")))
	assert.True(t, entries[2].Debit.Equal(d("200")))

	for _, e := range entries {
		assert.False(t, e.Debit.IsNegative())
		assert.False(t, e.Credit.IsNegative())
	}
}

func TestBuildEntries_MultipleRates(t *testing.T) {
	inv := acmeInvoice()
	inv.Items = append(inv.Items, model.LineItem{Description: "Livre", VATRate: d("3"), TotalHT: d("50"), TotalVAT: d("1.50")})
	inv.TotalHT = d("250")
	inv.TotalVAT = d("35.50")
	inv.TotalTTC = d("285.50")

	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{inv}, model.DefaultAccountingSettings())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "TVA 17%", entries[1].Label)
	assert.Equal(t, "TVA 3%", entries[2].Label)
	assert.Equal(t, "461414", entries[2].GeneralAccount)
	assert.True(t, entries[2].Credit.Equal(d("1.5")))
}

func TestBuildEntries_RebateAtAnotherRate(t *testing.T) {
	inv := acmeInvoice()
	inv.Number = "2026-0100"
	inv.Items = []model.LineItem{
		{Description: "Design", VATRate: d("17"), TotalHT: d("100"), TotalVAT: d("17")},
		{Description: "Remise livres", VATRate: d("3"), TotalHT: d("-10"), TotalVAT: d("-0.30")},
	}
	inv.TotalHT = d("90")
	inv.TotalVAT = d("16.70")
	inv.TotalTTC = d("106.70")

	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{inv}, model.DefaultAccountingSettings())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.True(t, entries[0].Debit.Equal(d("106.70")))
	assert.Equal(t, "TVA 17%", entries[1].Label)
	assert.True(t, entries[1].Credit.Equal(d("17")))
	assert.Equal(t, "TVA 3%", entries[2].Label)
	assert.True(t, entries[2].Debit.Equal(d("0.30")))
	assert.True(t, entries[2].Credit.IsZero())
	assert.True(t, entries[3].Credit.Equal(d("90")))

	debit, credit := accounting.Totals(entries)
	assert.True(t, debit.Equal(credit))
}

func TestBuildEntries_CreditNoteRebate(t *testing.T) {
	inv := acmeCreditNote()
	inv.Items = append(inv.Items, model.LineItem{Description: "Frais", VATRate: d("3"), TotalHT: d("20"), TotalVAT: d("0.60")})
	inv.TotalHT = d("-180")
	inv.TotalVAT = d("-33.40")
	inv.TotalTTC = d("-213.40")

	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{inv}, model.DefaultAccountingSettings())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.True(t, entries[0].Credit.Equal(d("213.40")))
	assert.True(t, entries[1].Debit.Equal(d("34")))
	assert.True(t, entries[2].Credit.Equal(d("0.60")))
	assert.True(t, entries[3].Debit.Equal(d("180")))
}

func TestBuildEntries_ExemptInvoiceHasNoVATLine(t *testing.T) {
	inv := acmeInvoice()
	inv.Items[0].VATRate = decimal.Zero
	inv.Items[0].TotalVAT = decimal.Zero
	inv.TotalVAT = decimal.Zero
	inv.TotalTTC = d("200")

	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{inv}, model.DefaultAccountingSettings())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "401100", entries[0].GeneralAccount)
	assert.Equal(t, "703000", entries[1].GeneralAccount)
}

func TestBuildEntries_LabelTruncated(t *testing.T) {
	inv := acmeInvoice()
	inv.Client.Name = "Établissements Müller et Fils Société Anonyme"

	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{inv}, model.DefaultAccountingSettings())
	require.NoError(t, err)

	assert.Equal(t, model.MaxLabelLength, len([]rune(entries[0].Label)))
	assert.True(t, strings.HasPrefix(entries[0].Label, "Établissements Müller"))
}

func TestBuildEntries_KeepsInputOrder(t *testing.T) {
	first := acmeInvoice()
	second := acmeCreditNote()
	third := acmeInvoice()
	third.Number = "2026-0000"

	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{first, second, third}, model.DefaultAccountingSettings())
	require.NoError(t, err)

	pieces := accounting.GroupByPiece(entries)
	require.Len(t, pieces, 3)
	assert.Equal(t, "2026-0001", pieces[0].Reference)
	assert.Equal(t, "AV-2026-0001", pieces[1].Reference)
	assert.Equal(t, "2026-0000", pieces[2].Reference)
}

func TestBuildEntries_Unbalanced(t *testing.T) {
	inv := acmeInvoice()
	inv.TotalTTC = d("235")

	_, err := accounting.BuildEntries([]model.InvoiceSnapshot{inv}, model.DefaultAccountingSettings())
	require.ErrorIs(t, err, model.ErrUnbalanced)
	assert.Contains(t, err.Error(), "2026-0001")
}

func TestBuildEntries_InvalidSettings(t *testing.T) {
	settings := model.DefaultAccountingSettings()
	settings.SalesAccount = ""

	_, err := accounting.BuildEntries([]model.InvoiceSnapshot{acmeInvoice()}, settings)
	var valErr *model.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestBuildEntries_CustomAccounts(t *testing.T) {
	settings := model.DefaultAccountingSettings()
	settings.SalesJournal = "VT"
	settings.SalesAccount = "706000"
	settings.VATAccounts = map[string]string{"17": "445710"}

	inv := acmeInvoice()
	inv.Client.AccountingCode = "ACME"

	entries, err := accounting.BuildEntries([]model.InvoiceSnapshot{inv}, settings)
	require.NoError(t, err)
	assert.Equal(t, "ACME", entries[0].ThirdPartyCode)
	assert.Equal(t, "445710", entries[1].GeneralAccount)
	assert.Equal(t, "706000", entries[2].GeneralAccount)
	assert.Equal(t, "VT", entries[2].JournalCode)
}

func randomInvoice(r *rand.Rand, n int) model.InvoiceSnapshot {
	rates := []decimal.Decimal{d("17"), d("14"), d("8"), d("3"), decimal.Zero}

	inv := model.InvoiceSnapshot{
		Number:   fmt.Sprintf("P-%04d", n),
		Type:     model.InvoiceTypeInvoice,
		Status:   model.InvoiceStatusFinalized,
		IssuedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n),
		Client:   model.ClientSnapshot{ID: int64(n), Name: "Client"},
	}
	credit := r.Intn(4) == 0
	if credit {
		inv.Type = model.InvoiceTypeCreditNote
	}

	ht, vat := money.Zero, money.Zero
	count := 1 + r.Intn(5)
	for i := 0; i < count; i++ {
		rate := rates[r.Intn(len(rates))]
		lineHT := decimal.New(int64(r.Intn(1_000_000)), -2)
		// every sixth line is a rebate against the document direction
		if credit != (r.Intn(6) == 0) {
			lineHT = lineHT.Neg()
		}
		lineVAT := lineHT.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
		inv.Items = append(inv.Items, model.LineItem{VATRate: rate, TotalHT: lineHT, TotalVAT: lineVAT})
		ht = ht.Add(lineHT)
		vat = vat.Add(lineVAT)
	}
	inv.TotalHT = ht
	inv.TotalVAT = vat
	inv.TotalTTC = ht.Add(vat)
	return inv
}

func TestBuildEntries_AlwaysBalanced(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	invoices := make([]model.InvoiceSnapshot, 0, 200)
	for i := 0; i < 200; i++ {
		invoices = append(invoices, randomInvoice(r, i))
	}

	entries, err := accounting.BuildEntries(invoices, model.DefaultAccountingSettings())
	require.NoError(t, err)

	for _, piece := range accounting.GroupByPiece(entries) {
		debit, credit := accounting.Totals(piece.Entries)
		assert.True(t, debit.Equal(credit), "%s: debit %s credit %s", piece.Reference, debit, credit)

		for _, e := range piece.Entries {
			assert.NotEqual(t, e.Debit.IsZero(), e.Credit.IsZero(), "exactly one side must be set on %s", piece.Reference)
		}
	}
}
