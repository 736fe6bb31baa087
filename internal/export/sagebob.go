package export

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	money "github.com/fakturlu/faktur-accounting/internal/decimal"
	"github.com/fakturlu/faktur-accounting/internal/model"
)

// Sage BOB record widths
const (
	bobTypeWidth    = 2
	bobJournalWidth = 8
	bobDateWidth    = 8
	bobPieceWidth   = 8
	bobAccountWidth = 8
	bobAmountWidth  = 15
	bobLabelWidth   = 40
	bobDueWidth     = 8
	bobThirdWidth   = 8

	// BOBRecordLength is the width of one record, line ending excluded
	BOBRecordLength = bobTypeWidth + bobJournalWidth + bobDateWidth + bobPieceWidth +
		bobAccountWidth + bobAmountWidth + bobLabelWidth + bobDueWidth + bobThirdWidth

	bobRecordType = "01"
	bobDate       = "20060102"
)

// SageBOBFormatter writes fixed-width ISO-8859-1 records
type SageBOBFormatter struct{}

// NewSageBOBFormatter creates the Sage BOB formatter
func NewSageBOBFormatter() *SageBOBFormatter {
	return &SageBOBFormatter{}
}

func (f *SageBOBFormatter) Format() Format      { return FormatSageBOB }
func (f *SageBOBFormatter) Extension() string   { return "txt" }
func (f *SageBOBFormatter) ContentType() string { return "text/plain; charset=iso-8859-1" }

// Write renders one record per entry, without header
func (f *SageBOBFormatter) Write(w io.Writer, in Input) error {
	var b strings.Builder
	for _, e := range in.Entries {
		b.WriteString(bobRecord(e))
		b.WriteString(crlf)
	}

	// unrepresentable runes become a single substitution byte, so widths hold
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	out, err := enc.String(b.String())
	if err != nil {
		return model.NewExportError(string(FormatSageBOB), "encode ISO-8859-1", err)
	}
	return writeAll(w, FormatSageBOB, []byte(out))
}

func bobRecord(e model.AccountingEntry) string {
	var b strings.Builder
	b.Grow(BOBRecordLength)

	b.WriteString(bobRecordType)
	b.WriteString(fixed(e.JournalCode, bobJournalWidth))
	b.WriteString(e.Date.Format(bobDate))
	b.WriteString(fixed(e.PieceReference, bobPieceWidth))
	b.WriteString(fixed(e.GeneralAccount, bobAccountWidth))
	b.WriteString(bobAmount(e))
	b.WriteString(fixed(e.Label, bobLabelWidth))
	if e.DueDate != nil && !e.DueDate.IsZero() {
		b.WriteString(e.DueDate.Format(bobDate))
	} else {
		b.WriteString(strings.Repeat(" ", bobDueWidth))
	}
	b.WriteString(fixed(e.ThirdPartyCode, bobThirdWidth))
	return b.String()
}

// bobAmount renders sign and 14 zero-padded digits of cents, debit positive
func bobAmount(e model.AccountingEntry) string {
	cents := money.Cents(e.SignedAmount())
	sign := "+"
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%0*d", sign, bobAmountWidth-1, cents)
}

// fixed left-justifies s in width runes, truncating when longer
func fixed(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
