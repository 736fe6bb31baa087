package model

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	money "github.com/fakturlu/faktur-accounting/internal/decimal"
)

// InvoiceType distinguishes invoices from credit notes
type InvoiceType string

const (
	InvoiceTypeInvoice    InvoiceType = "invoice"
	InvoiceTypeCreditNote InvoiceType = "credit_note"
)

// InvoiceStatus is the lifecycle state owned by the invoicing layer
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusFinalized InvoiceStatus = "finalized"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// ClientType is the legal nature of the buyer
type ClientType string

const (
	ClientTypeB2B ClientType = "b2b"
	ClientTypeB2C ClientType = "b2c"
)

// Address is a postal address
type Address struct {
	Street      string `json:"street,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// ClientSnapshot is the buyer identity frozen at finalization
type ClientSnapshot struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name" validate:"required"`
	Type           ClientType `json:"type" validate:"omitempty,oneof=b2b b2c"`
	CountryCode    string     `json:"country_code"`
	VATNumber      string     `json:"vat_number,omitempty"`
	AccountingCode string     `json:"accounting_code,omitempty"`
	PeppolID       string     `json:"peppol_id,omitempty"`
	Email          string     `json:"email,omitempty"`
	Address        Address    `json:"address"`
}

// LineItem is one invoiced line. Amounts are negative on credit notes.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	TotalHT     decimal.Decimal `json:"total_ht"`
	TotalVAT    decimal.Decimal `json:"total_vat"`
}

// VATLine is the per-rate aggregate of an invoice
type VATLine struct {
	Rate   decimal.Decimal `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// InvoiceSnapshot holds the immutable financial facts of a finalized invoice.
// Credit notes store negative totals.
type InvoiceSnapshot struct {
	ID       int64           `json:"id"`
	Number   string          `json:"number" validate:"required"`
	Type     InvoiceType     `json:"type" validate:"required,oneof=invoice credit_note"`
	Status   InvoiceStatus   `json:"status"`
	IssuedAt time.Time       `json:"issued_at" validate:"required"`
	DueAt    *time.Time      `json:"due_at,omitempty"`
	Currency string          `json:"currency,omitempty"`
	TotalHT  decimal.Decimal `json:"total_ht"`
	TotalVAT decimal.Decimal `json:"total_vat"`
	TotalTTC decimal.Decimal `json:"total_ttc"`
	Items    []LineItem      `json:"items"`
	Client   ClientSnapshot  `json:"client"`
}

// Validate checks the snapshot carries what exports need
func (inv *InvoiceSnapshot) Validate() error {
	return validateStruct(inv)
}

// IsCreditNote reports whether the document reverses a previous invoice
func (inv *InvoiceSnapshot) IsCreditNote() bool {
	return inv.Type == InvoiceTypeCreditNote
}

// Sign is the direction of the document amounts: -1 when the total is
// negative, 1 otherwise. Items of the opposite sign are rebates.
func (inv *InvoiceSnapshot) Sign() int {
	if s := inv.TotalTTC.Sign(); s != 0 {
		return s
	}
	if inv.TotalHT.IsNegative() {
		return -1
	}
	return 1
}

// IsFinalized reports whether the amounts are frozen
func (inv *InvoiceSnapshot) IsFinalized() bool {
	switch inv.Status {
	case InvoiceStatusFinalized, InvoiceStatusSent, InvoiceStatusPaid:
		return true
	default:
		return false
	}
}

// CurrencyCode returns the document currency, EUR when unset
func (inv *InvoiceSnapshot) CurrencyCode() string {
	if inv.Currency == "" {
		return "EUR"
	}
	return inv.Currency
}

// VATBreakdown groups items by VAT rate, highest rate first
func (inv *InvoiceSnapshot) VATBreakdown() []VATLine {
	groups := lo.GroupBy(inv.Items, func(item LineItem) string {
		return money.FormatRate(item.VATRate)
	})

	lines := make([]VATLine, 0, len(groups))
	for _, items := range groups {
		line := VATLine{Rate: items[0].VATRate, Base: money.Zero, Amount: money.Zero}
		for _, item := range items {
			line.Base = line.Base.Add(item.TotalHT)
			line.Amount = line.Amount.Add(item.TotalVAT)
		}
		line.Base = money.Round2(line.Base)
		line.Amount = money.Round2(line.Amount)
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Rate.GreaterThan(lines[j].Rate)
	})
	return lines
}

// MainVATRate returns the rate whose items carry the largest HT sum.
// Ties go to the highest rate; an invoice without items reports zero.
func (inv *InvoiceSnapshot) MainVATRate() decimal.Decimal {
	best := money.Zero
	bestBase := decimal.NewFromInt(-1)
	for _, line := range inv.VATBreakdown() {
		base := line.Base.Abs()
		// breakdown is sorted by rate descending, so strict > keeps the higher rate on ties
		if base.GreaterThan(bestBase) {
			best = line.Rate
			bestBase = base
		}
	}
	return best
}
