// Package vat determines which Luxembourg VAT treatment applies to a sale.
package vat

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ScenarioKey enumerates the mutually exclusive tax scenarios
type ScenarioKey uint8

const (
	ScenarioB2BIntraEU ScenarioKey = iota + 1
	ScenarioB2BLU
	ScenarioB2CLU
	ScenarioFranchise
	ScenarioExport
)

// AllScenarioKeys lists every defined scenario
var AllScenarioKeys = []ScenarioKey{
	ScenarioB2BIntraEU,
	ScenarioB2BLU,
	ScenarioB2CLU,
	ScenarioFranchise,
	ScenarioExport,
}

func (k ScenarioKey) String() string {
	switch k {
	case ScenarioB2BIntraEU:
		return "B2B_INTRA_EU"
	case ScenarioB2BLU:
		return "B2B_LU"
	case ScenarioB2CLU:
		return "B2C_LU"
	case ScenarioFranchise:
		return "FRANCHISE"
	case ScenarioExport:
		return "EXPORT"
	default:
		return fmt.Sprintf("ScenarioKey(%d)", uint8(k))
	}
}

// MarshalJSON encodes the key by name
func (k ScenarioKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// LegalMention is the exemption wording printed on the invoice
type LegalMention string

const (
	MentionNone          LegalMention = ""
	MentionFranchise     LegalMention = "franchise"
	MentionReverseCharge LegalMention = "reverse_charge"
	MentionExport        LegalMention = "export"
)

// Text returns the French mention required on the invoice
func (m LegalMention) Text() string {
	switch m {
	case MentionFranchise:
		return "TVA non applicable - régime de la franchise, art. 57 LTVA"
	case MentionReverseCharge:
		return "Autoliquidation - art. 196 de la directive 2006/112/CE"
	case MentionExport:
		return "Exonération de TVA - livraison hors UE, art. 146 de la directive 2006/112/CE"
	default:
		return ""
	}
}

// Scenario is the resolved tax treatment. It is immutable.
type Scenario struct {
	key     ScenarioKey
	rate    decimal.Decimal
	mention LegalMention
}

func newScenario(key ScenarioKey, standardRate decimal.Decimal) Scenario {
	switch key {
	case ScenarioFranchise:
		return Scenario{key: key, rate: decimal.Zero, mention: MentionFranchise}
	case ScenarioB2BIntraEU:
		return Scenario{key: key, rate: decimal.Zero, mention: MentionReverseCharge}
	case ScenarioExport:
		return Scenario{key: key, rate: decimal.Zero, mention: MentionExport}
	case ScenarioB2BLU, ScenarioB2CLU:
		return Scenario{key: key, rate: standardRate, mention: MentionNone}
	default:
		panic(fmt.Sprintf("vat: unknown scenario %d", key))
	}
}

// Key returns the scenario identifier
func (s Scenario) Key() ScenarioKey { return s.key }

// Rate returns the VAT rate in percent
func (s Scenario) Rate() decimal.Decimal { return s.rate }

// Mention returns the legal mention, MentionNone for domestic VAT
func (s Scenario) Mention() LegalMention { return s.mention }

// HasMention reports whether the invoice must carry a legal mention
func (s Scenario) HasMention() bool { return s.mention != MentionNone }

// IsExempt reports whether no VAT is charged
func (s Scenario) IsExempt() bool { return s.rate.IsZero() }

// UBLCategory returns the UNCL5305 tax category code used in Peppol documents
func (s Scenario) UBLCategory() string {
	switch s.key {
	case ScenarioFranchise:
		return "E"
	case ScenarioB2BIntraEU:
		return "AE"
	case ScenarioExport:
		return "G"
	case ScenarioB2BLU, ScenarioB2CLU:
		return "S"
	default:
		return "S"
	}
}

// ExemptionCode returns the VATEX code for exempt categories
func (s Scenario) ExemptionCode() string {
	switch s.key {
	case ScenarioB2BIntraEU:
		return "VATEX-EU-AE"
	case ScenarioExport:
		return "VATEX-EU-G"
	default:
		return ""
	}
}

type scenarioJSON struct {
	Key         string          `json:"key"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Mention     *LegalMention   `json:"legal_mention"`
	MentionText string          `json:"legal_mention_text,omitempty"`
}

// MarshalJSON encodes the scenario with a null mention for domestic VAT
func (s Scenario) MarshalJSON() ([]byte, error) {
	out := scenarioJSON{Key: s.key.String(), VATRate: s.rate}
	if s.HasMention() {
		m := s.mention
		out.Mention = &m
		out.MentionText = m.Text()
	}
	return json.Marshal(out)
}
