package peppol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fakturlu/faktur-accounting/internal/peppol"
)

func TestIsPermanentError(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"Recipient not found in SMP", true},
		{"RECIPIENT_NOT_FOUND", true},
		{"invalid document: empty payload", true},
		{"error code INVALID_DOCUMENT", true},
		{"Schema validation error at line 12", true},
		{"BR-CO-15 validation failed", true},
		{"Unknown receiver 9938:LU00000000", true},
		{"participant not registered", true},
		{"access point timeout", false},
		{"service temporarily unavailable", false},
		{"HTTP 401: unauthorized", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, peppol.IsPermanentError(tt.message))
		})
	}
}
