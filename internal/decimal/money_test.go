package decimal_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fakturlu/faktur-accounting/internal/decimal"
)

func TestRound2_HalfUp(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"34", "34"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := decimal.Round2(dec.RequireFromString(tt.in))
			assert.True(t, got.Equal(dec.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(23400), decimal.Cents(dec.RequireFromString("234")))
	assert.Equal(t, int64(-3401), decimal.Cents(dec.RequireFromString("-34.005")))
	assert.Equal(t, int64(1), decimal.Cents(dec.RequireFromString("0.005")))
}

func TestFormatComma(t *testing.T) {
	assert.Equal(t, "234,00", decimal.FormatComma(dec.NewFromInt(234)))
	assert.Equal(t, "-34,50", decimal.FormatComma(dec.RequireFromString("-34.5")))
	assert.Equal(t, "", decimal.FormatCommaOrEmpty(dec.Zero))
	assert.Equal(t, "0,01", decimal.FormatCommaOrEmpty(dec.RequireFromString("0.01")))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "17", decimal.FormatRate(dec.RequireFromString("17.00")))
	assert.Equal(t, "8.5", decimal.FormatRate(dec.RequireFromString("8.50")))
	assert.Equal(t, "8,5", decimal.FormatRateComma(dec.RequireFromString("8.5")))
}
