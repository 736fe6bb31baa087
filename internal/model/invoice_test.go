package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mixedInvoice() model.InvoiceSnapshot {
	return model.InvoiceSnapshot{
		Number:   "2026-0007",
		Type:     model.InvoiceTypeInvoice,
		Status:   model.InvoiceStatusFinalized,
		IssuedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Client:   model.ClientSnapshot{ID: 12, Name: "Acme"},
		Items: []model.LineItem{
			{Description: "Consulting", VATRate: d("17"), TotalHT: d("100"), TotalVAT: d("17")},
			{Description: "Books", VATRate: d("3"), TotalHT: d("300"), TotalVAT: d("9")},
			{Description: "Training", VATRate: d("17"), TotalHT: d("50.50"), TotalVAT: d("8.59")},
		},
	}
}

func TestInvoice_Creation(t *testing.T) {
	inv := mixedInvoice()

	assert.Equal(t, "2026-0007", inv.Number)
	assert.False(t, inv.IsCreditNote())
	assert.True(t, inv.IsFinalized())
	assert.Equal(t, "EUR", inv.CurrencyCode())
	require.NoError(t, inv.Validate())
}

func TestInvoice_Sign(t *testing.T) {
	tests := []struct {
		name string
		ht   string
		ttc  string
		want int
	}{
		{"positive total", "100", "117", 1},
		{"negative total", "-100", "-117", -1},
		{"zero total with negative net", "-1", "0", -1},
		{"zero document", "0", "0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := model.InvoiceSnapshot{TotalHT: d(tt.ht), TotalTTC: d(tt.ttc)}
			assert.Equal(t, tt.want, inv.Sign())
		})
	}
}

func TestInvoice_IsFinalized(t *testing.T) {
	tests := []struct {
		status   model.InvoiceStatus
		expected bool
	}{
		{model.InvoiceStatusDraft, false},
		{model.InvoiceStatusFinalized, true},
		{model.InvoiceStatusSent, true},
		{model.InvoiceStatusPaid, true},
		{model.InvoiceStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			inv := model.InvoiceSnapshot{Status: tt.status}
			assert.Equal(t, tt.expected, inv.IsFinalized())
		})
	}
}

func TestInvoice_VATBreakdown(t *testing.T) {
	inv := mixedInvoice()

	lines := inv.VATBreakdown()
	require.Len(t, lines, 2)

	assert.True(t, lines[0].Rate.Equal(d("17")))
	assert.True(t, lines[0].Base.Equal(d("150.50")), "got %s", lines[0].Base)
	assert.True(t, lines[0].Amount.Equal(d("25.59")), "got %s", lines[0].Amount)

	assert.True(t, lines[1].Rate.Equal(d("3")))
	assert.True(t, lines[1].Base.Equal(d("300")))
	assert.True(t, lines[1].Amount.Equal(d("9")))
}

func TestInvoice_MainVATRate(t *testing.T) {
	inv := mixedInvoice()
	assert.True(t, inv.MainVATRate().Equal(d("3")))

	tie := model.InvoiceSnapshot{Items: []model.LineItem{
		{VATRate: d("8"), TotalHT: d("100")},
		{VATRate: d("17"), TotalHT: d("100")},
	}}
	assert.True(t, tie.MainVATRate().Equal(d("17")), "ties go to the highest rate")

	credit := model.InvoiceSnapshot{Type: model.InvoiceTypeCreditNote, Items: []model.LineItem{
		{VATRate: d("17"), TotalHT: d("-20")},
		{VATRate: d("8"), TotalHT: d("-200")},
	}}
	assert.True(t, credit.MainVATRate().Equal(d("8")))

	empty := model.InvoiceSnapshot{}
	assert.True(t, empty.MainVATRate().IsZero())
}

func TestInvoice_ValidateMissingNumber(t *testing.T) {
	inv := mixedInvoice()
	inv.Number = ""

	err := inv.Validate()
	require.Error(t, err)

	var valErr *model.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Field, "Number")
	assert.Equal(t, "required", valErr.Rule)
}

func TestAccountingSettings_VATAccount(t *testing.T) {
	settings := model.DefaultAccountingSettings()

	assert.Equal(t, "461411", settings.VATAccount(d("17")))
	assert.Equal(t, "461411", settings.VATAccount(d("17.00")))
	assert.Equal(t, "461413", settings.VATAccount(d("8")))
	assert.Equal(t, settings.DefaultVATAccount, settings.VATAccount(d("21")))
}

func TestAccountingSettings_ClientAccountingID(t *testing.T) {
	settings := model.DefaultAccountingSettings()

	assert.Equal(t, "C00042", settings.ClientAccountingID(model.ClientSnapshot{ID: 42}))
	assert.Equal(t, "ACME01", settings.ClientAccountingID(model.ClientSnapshot{ID: 42, AccountingCode: "ACME01"}))
}

func TestAccountingSettings_Validate(t *testing.T) {
	require.NoError(t, model.DefaultAccountingSettings().Validate())

	settings := model.DefaultAccountingSettings()
	settings.SalesJournal = ""
	err := settings.Validate()

	var valErr *model.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Field, "SalesJournal")
}

func TestSeller_Validate(t *testing.T) {
	seller := model.Seller{Name: "Studio Kirchberg", VATRegime: model.VATRegimeAssujetti}
	require.NoError(t, seller.Validate())
	assert.False(t, seller.IsFranchise())

	seller.VATRegime = "exempt"
	require.Error(t, seller.Validate())
}

func TestAccountingEntry_SignedAmount(t *testing.T) {
	debit := model.AccountingEntry{Debit: d("234"), Credit: decimal.Zero}
	credit := model.AccountingEntry{Debit: decimal.Zero, Credit: d("34")}

	assert.True(t, debit.IsDebit())
	assert.True(t, debit.SignedAmount().Equal(d("234")))
	assert.False(t, credit.IsDebit())
	assert.True(t, credit.SignedAmount().Equal(d("-34")))
}

func TestValidationError(t *testing.T) {
	err := model.NewValidationError("VATNumber", "LU1", "format", "too short")

	require.Contains(t, err.Error(), "VATNumber")
	require.Contains(t, err.Error(), "LU1")
	require.Contains(t, err.Error(), "too short")
}

func TestExportError_WithCause(t *testing.T) {
	cause := assert.AnError
	err := model.NewExportError("sage_bob", "write failed", cause)

	require.Contains(t, err.Error(), "sage_bob")
	require.ErrorIs(t, err, cause)
}

func TestTransmissionError(t *testing.T) {
	err := model.NewTransmissionError("simulator", "2026-0001", "recipient not found", true, nil)
	err.Attempts = 1

	require.Contains(t, err.Error(), "permanent")
	require.Contains(t, err.Error(), "2026-0001")
	require.Contains(t, err.Error(), "simulator")
}
