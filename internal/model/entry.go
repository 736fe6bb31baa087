package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLabelLength is the label width accepted by accounting imports
const MaxLabelLength = 40

// AccountingEntry is one double-entry bookkeeping line.
// Exactly one of Debit and Credit is non-zero.
type AccountingEntry struct {
	Date           time.Time       `json:"date"`
	JournalCode    string          `json:"journal_code"`
	GeneralAccount string          `json:"general_account"`
	ThirdPartyCode string          `json:"third_party_code,omitempty"`
	PieceReference string          `json:"piece_reference"`
	Label          string          `json:"label"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
}

// IsDebit reports whether the line sits on the debit side
func (e AccountingEntry) IsDebit() bool {
	return !e.Debit.IsZero()
}

// SignedAmount returns debit as positive and credit as negative
func (e AccountingEntry) SignedAmount() decimal.Decimal {
	if e.IsDebit() {
		return e.Debit
	}
	return e.Credit.Neg()
}
