package vat

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

// StandardRate is the Luxembourg standard VAT rate in percent
var StandardRate = decimal.NewFromInt(17)

// Resolver picks the tax scenario of a sale
type Resolver struct {
	homeCountry  string
	standardRate decimal.Decimal
}

// Option configures the resolver
type Option func(*Resolver)

// WithStandardRate overrides the domestic rate
func WithStandardRate(rate decimal.Decimal) Option {
	return func(r *Resolver) {
		r.standardRate = rate
	}
}

// WithHomeCountry overrides the seller's member state
func WithHomeCountry(code string) Option {
	return func(r *Resolver) {
		r.homeCountry = NormalizeCountry(code)
	}
}

// NewResolver creates a resolver for Luxembourg sellers
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		homeCountry:  HomeCountry,
		standardRate: StandardRate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// DetermineScenario resolves with the Luxembourg defaults
func DetermineScenario(regime model.VATRegime, clientCountry string, clientType model.ClientType, clientVATNumber string) Scenario {
	return defaultResolver.DetermineScenario(regime, clientCountry, clientType, clientVATNumber)
}

// ForInvoice resolves the scenario of a seller/client pair
func (r *Resolver) ForInvoice(seller *model.Seller, client model.ClientSnapshot) Scenario {
	return r.DetermineScenario(seller.VATRegime, client.CountryCode, client.Type, client.VATNumber)
}

// DetermineScenario applies the first matching rule. It never fails: unknown
// or malformed input degrades to domestic VAT.
func (r *Resolver) DetermineScenario(regime model.VATRegime, clientCountry string, clientType model.ClientType, clientVATNumber string) Scenario {
	if model.VATRegime(strings.ToLower(strings.TrimSpace(string(regime)))) == model.VATRegimeFranchise {
		return newScenario(ScenarioFranchise, r.standardRate)
	}

	country := NormalizeCountry(clientCountry)
	if country == "" {
		country = r.homeCountry
	}
	kind := model.ClientType(strings.ToLower(strings.TrimSpace(string(clientType))))

	vatNumber := NormalizeVATNumber(clientVATNumber)
	if !ValidateVATNumber(vatNumber, country) {
		vatNumber = ""
	}

	switch {
	case kind == model.ClientTypeB2B && isIntraEU(country, r.homeCountry) && vatNumber != "":
		return newScenario(ScenarioB2BIntraEU, r.standardRate)
	case country == r.homeCountry && kind == model.ClientTypeB2B:
		return newScenario(ScenarioB2BLU, r.standardRate)
	case country == r.homeCountry && kind == model.ClientTypeB2C:
		return newScenario(ScenarioB2CLU, r.standardRate)
	case !IsEUCountry(country):
		return newScenario(ScenarioExport, r.standardRate)
	default:
		return newScenario(ScenarioB2BLU, r.standardRate)
	}
}
