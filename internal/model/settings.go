package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	money "github.com/fakturlu/faktur-accounting/internal/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AccountingSettings is a tenant's chart-of-accounts mapping
type AccountingSettings struct {
	SalesAccount      string            `json:"sales_account" validate:"required,max=20"`
	ClientsAccount    string            `json:"clients_account" validate:"required,max=20"`
	SalesJournal      string            `json:"sales_journal" validate:"required,max=8"`
	DefaultVATAccount string            `json:"default_vat_account" validate:"required,max=20"`
	VATAccounts       map[string]string `json:"vat_accounts,omitempty"`
	ClientPrefix      string            `json:"client_prefix,omitempty" validate:"max=3"`
}

// DefaultAccountingSettings returns the Luxembourg PCN defaults
func DefaultAccountingSettings() AccountingSettings {
	return AccountingSettings{
		SalesAccount:      "703000",
		ClientsAccount:    "401100",
		SalesJournal:      "VEN",
		DefaultVATAccount: "461411",
		VATAccounts: map[string]string{
			"17": "461411",
			"14": "461412",
			"8":  "461413",
			"3":  "461414",
		},
		ClientPrefix: "C",
	}
}

// VATAccount returns the collected-VAT account for a rate
func (s AccountingSettings) VATAccount(rate decimal.Decimal) string {
	if account, ok := s.VATAccounts[money.FormatRate(rate)]; ok && account != "" {
		return account
	}
	return s.DefaultVATAccount
}

// ClientAccountingID returns the third-party code of a client
func (s AccountingSettings) ClientAccountingID(client ClientSnapshot) string {
	if client.AccountingCode != "" {
		return client.AccountingCode
	}
	return fmt.Sprintf("%s%05d", s.ClientPrefix, client.ID)
}

// Validate checks the mapping is usable for an export
func (s AccountingSettings) Validate() error {
	return validateStruct(s)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewValidationError(fe.Namespace(), fe.Value(), fe.Tag(), "field does not satisfy "+fe.Tag())
	}
	return err
}
