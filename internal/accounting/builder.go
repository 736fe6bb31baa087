// Package accounting turns finalized invoices into double-entry bookkeeping lines.
package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	money "github.com/fakturlu/faktur-accounting/internal/decimal"
	"github.com/fakturlu/faktur-accounting/internal/model"
)

// BuildEntries produces the journal lines of each invoice in input order:
// the client line, one VAT line per non-zero rate, then the sales line.
// Credit notes swap debit and credit and use absolute amounts. A VAT group
// whose sign opposes the document total (a rebate line) is posted on the
// opposite side.
func BuildEntries(invoices []model.InvoiceSnapshot, settings model.AccountingSettings) ([]model.AccountingEntry, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	entries := make([]model.AccountingEntry, 0, len(invoices)*3)
	for i := range invoices {
		lines, err := invoiceEntries(&invoices[i], settings)
		if err != nil {
			return nil, err
		}
		entries = append(entries, lines...)
	}
	return entries, nil
}

func invoiceEntries(inv *model.InvoiceSnapshot, settings model.AccountingSettings) ([]model.AccountingEntry, error) {
	credit := inv.IsCreditNote()
	sign := inv.Sign()
	label := Label(inv.Client.Name + " - " + inv.Number)

	base := model.AccountingEntry{
		Date:           inv.IssuedAt,
		JournalCode:    settings.SalesJournal,
		PieceReference: inv.Number,
	}

	var lines []model.AccountingEntry

	// client side: debit on invoices, credit on credit notes
	client := base
	client.GeneralAccount = settings.ClientsAccount
	client.ThirdPartyCode = settings.ClientAccountingID(inv.Client)
	client.Label = label
	client.DueDate = inv.DueAt
	lines = appendLine(lines, client, inv.TotalTTC, sign, !credit)

	for _, vl := range inv.VATBreakdown() {
		line := base
		line.GeneralAccount = settings.VATAccount(vl.Rate)
		line.Label = fmt.Sprintf("TVA %s%%", money.FormatRate(vl.Rate))
		lines = appendLine(lines, line, vl.Amount, sign, credit)
	}

	sales := base
	sales.GeneralAccount = settings.SalesAccount
	sales.Label = label
	lines = appendLine(lines, sales, inv.TotalHT, sign, credit)

	debit, creditSum := Totals(lines)
	if !debit.Equal(creditSum) {
		return nil, fmt.Errorf("%w: invoice %s debit %s credit %s", model.ErrUnbalanced, inv.Number, debit.StringFixed(2), creditSum.StringFixed(2))
	}
	return lines, nil
}

// appendLine rounds the magnitude and drops lines that round to zero.
// Amounts against the document sign go to the other side.
func appendLine(lines []model.AccountingEntry, e model.AccountingEntry, amount decimal.Decimal, sign int, debit bool) []model.AccountingEntry {
	if amount.Sign()*sign < 0 {
		debit = !debit
	}
	amount = money.Round2(amount.Abs())
	if amount.IsZero() {
		return lines
	}
	e.Debit = money.Zero
	e.Credit = money.Zero
	if debit {
		e.Debit = amount
	} else {
		e.Credit = amount
	}
	return append(lines, e)
}

// Label truncates to the accounting label width
func Label(s string) string {
	r := []rune(s)
	if len(r) <= model.MaxLabelLength {
		return s
	}
	return string(r[:model.MaxLabelLength])
}

// Totals sums the debit and credit columns
func Totals(entries []model.AccountingEntry) (debit, credit decimal.Decimal) {
	debit, credit = money.Zero, money.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}

// Piece groups the lines sharing a piece reference
type Piece struct {
	Reference string
	Entries   []model.AccountingEntry
}

// GroupByPiece splits entries per piece, keeping first-seen order
func GroupByPiece(entries []model.AccountingEntry) []Piece {
	index := make(map[string]int)
	var pieces []Piece
	for _, e := range entries {
		i, ok := index[e.PieceReference]
		if !ok {
			i = len(pieces)
			index[e.PieceReference] = i
			pieces = append(pieces, Piece{Reference: e.PieceReference})
		}
		pieces[i].Entries = append(pieces[i].Entries, e)
	}
	return pieces
}
