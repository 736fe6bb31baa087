package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalanced indicates debit != credit for an invoice's lines.
	ErrUnbalanced = errors.New("accounting: entry lines must balance")
	// ErrUnsupportedFormat indicates an unknown export format argument.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
	// ErrNoInvoices indicates the export selection is empty.
	ErrNoInvoices = errors.New("export: no finalized invoices in range")
	// ErrProviderNotConfigured indicates the Peppol access point lacks credentials.
	ErrProviderNotConfigured = errors.New("peppol: provider not configured")
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// ExportError represents a failed export generation
type ExportError struct {
	Format  string
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export failed [%s]: %s (%v)", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("export failed [%s]: %s", e.Format, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new export error
func NewExportError(format, message string, cause error) *ExportError {
	return &ExportError{
		Format:  format,
		Message: message,
		Cause:   cause,
	}
}

// TransmissionError represents a failed Peppol transmission
type TransmissionError struct {
	Provider      string
	InvoiceNumber string
	Message       string
	Permanent     bool
	Attempts      int
	Cause         error
}

func (e *TransmissionError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] transmission of %s failed (%s, %d attempts): %s (%v)", e.Provider, e.InvoiceNumber, kind, e.Attempts, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] transmission of %s failed (%s, %d attempts): %s", e.Provider, e.InvoiceNumber, kind, e.Attempts, e.Message)
}

func (e *TransmissionError) Unwrap() error {
	return e.Cause
}

// NewTransmissionError creates a new transmission error
func NewTransmissionError(provider, invoiceNumber, message string, permanent bool, cause error) *TransmissionError {
	return &TransmissionError{
		Provider:      provider,
		InvoiceNumber: invoiceNumber,
		Message:       message,
		Permanent:     permanent,
		Cause:         cause,
	}
}
