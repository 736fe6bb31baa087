// Package peppol builds Peppol BIS Billing 3.0 documents and sends them
// through an access point.
package peppol

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	money "github.com/fakturlu/faktur-accounting/internal/decimal"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

const (
	CustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:fdc:peppol.eu:2017:poacc:billing:3.0"
	ProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	TypeCodeInvoice    = "380"
	TypeCodeCreditNote = "381"

	// SEPA credit transfer
	paymentMeansCode = "58"
	ublDate          = "2006-01-02"
)

var schemeRe = regexp.MustCompile(`^[0-9]{4}$`)

// ParticipantID is a Peppol identifier such as 0088:5798000000001
type ParticipantID struct {
	Scheme string
	Value  string
}

func (p ParticipantID) String() string {
	return p.Scheme + ":" + p.Value
}

// ParseParticipantID splits "scheme:value"
func ParseParticipantID(id string) (ParticipantID, error) {
	return parseParticipantID("PeppolID", id)
}

func parseParticipantID(field, id string) (ParticipantID, error) {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "iso6523-actorid-upis::")
	scheme, value, ok := strings.Cut(id, ":")
	if !ok || !schemeRe.MatchString(scheme) || strings.TrimSpace(value) == "" {
		return ParticipantID{}, model.NewValidationError(field, id, "format", "expected scheme:value with a 4 digit scheme")
	}
	return ParticipantID{Scheme: scheme, Value: strings.TrimSpace(value)}, nil
}

// GenerateUBL renders an invoice as a UBL Invoice, or a CreditNote for
// credit notes. Credit note amounts are written as positive values.
func GenerateUBL(seller *model.Seller, inv *model.InvoiceSnapshot, scenario vat.Scenario) ([]byte, error) {
	if seller == nil {
		return nil, model.NewValidationError("Seller", nil, "required", "seller is required")
	}
	if inv == nil || inv.Number == "" {
		return nil, model.NewValidationError("Number", nil, "required", "invoice number is required")
	}
	sellerID, err := parseParticipantID("Seller.PeppolID", seller.PeppolID)
	if err != nil {
		return nil, err
	}
	buyerID, err := parseParticipantID("Client.PeppolID", inv.Client.PeppolID)
	if err != nil {
		return nil, err
	}

	currency := inv.CurrencyCode()
	header := xmlHeader{
		Xmlns:           nsInvoice,
		Cac:             nsCac,
		Cbc:             nsCbc,
		CustomizationID: CustomizationID,
		ProfileID:       ProfileID,
		ID:              inv.Number,
		IssueDate:       inv.IssuedAt.Format(ublDate),
	}
	body := xmlBody{
		Note:                 scenario.Mention().Text(),
		DocumentCurrencyCode: currency,
		BuyerReference:       inv.Number,
		SupplierParty:        xmlPartyWrapper{Party: sellerParty(seller, sellerID)},
		CustomerParty:        xmlPartyWrapper{Party: clientParty(inv.Client, buyerID)},
		PaymentMeans:         paymentMeans(seller, inv),
		TaxTotal:             taxTotal(inv, scenario, currency),
		LegalMonetaryTotal: xmlMonetaryTotal{
			LineExtensionAmount: amount(lineTotal(inv), currency),
			TaxExclusiveAmount:  amount(inv.TotalHT, currency),
			TaxInclusiveAmount:  amount(inv.TotalTTC, currency),
			PayableAmount:       amount(inv.TotalTTC, currency),
		},
	}

	var doc interface{}
	if inv.IsCreditNote() {
		header.Xmlns = nsCreditNote
		cn := xmlCreditNote{xmlHeader: header, CreditNoteTypeCode: TypeCodeCreditNote, xmlBody: body}
		for i, item := range inv.Items {
			cn.Lines = append(cn.Lines, xmlCreditNoteLine{
				ID:                  strconv.Itoa(i + 1),
				CreditedQuantity:    quantity(item),
				LineExtensionAmount: amount(item.TotalHT, currency),
				Item:                lineItem(item, scenario),
				Price:               xmlPrice{PriceAmount: amount(item.UnitPrice, currency)},
			})
		}
		doc = cn
	} else {
		if inv.DueAt != nil {
			header.DueDate = inv.DueAt.Format(ublDate)
		}
		in := xmlInvoice{xmlHeader: header, InvoiceTypeCode: TypeCodeInvoice, xmlBody: body}
		for i, item := range inv.Items {
			in.Lines = append(in.Lines, xmlInvoiceLine{
				ID:                  strconv.Itoa(i + 1),
				InvoicedQuantity:    quantity(item),
				LineExtensionAmount: amount(item.TotalHT, currency),
				Item:                lineItem(item, scenario),
				Price:               xmlPrice{PriceAmount: amount(item.UnitPrice, currency)},
			})
		}
		doc = in
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("peppol: marshal UBL: %w", err)
	}
	return []byte(xml.Header + string(output)), nil
}

func sellerParty(s *model.Seller, id ParticipantID) xmlParty {
	p := xmlParty{
		EndpointID:    xmlEndpointID{Value: id.Value, SchemeID: id.Scheme},
		PartyName:     s.Name,
		PostalAddress: postalAddress(s.Address, "LU"),
		LegalEntity:   xmlLegalEntity{RegistrationName: s.Name, CompanyID: s.RCSNumber},
	}
	if s.VATNumber != "" {
		p.PartyTaxScheme = &xmlPartyTaxScheme{CompanyID: vat.NormalizeVATNumber(s.VATNumber), TaxScheme: "VAT"}
	}
	if s.Email != "" || s.Phone != "" {
		p.Contact = &xmlContact{Telephone: s.Phone, Email: s.Email}
	}
	return p
}

func clientParty(c model.ClientSnapshot, id ParticipantID) xmlParty {
	p := xmlParty{
		EndpointID:    xmlEndpointID{Value: id.Value, SchemeID: id.Scheme},
		PartyName:     c.Name,
		PostalAddress: postalAddress(c.Address, c.CountryCode),
		LegalEntity:   xmlLegalEntity{RegistrationName: c.Name},
	}
	if c.VATNumber != "" {
		p.PartyTaxScheme = &xmlPartyTaxScheme{CompanyID: vat.NormalizeVATNumber(c.VATNumber), TaxScheme: "VAT"}
	}
	if c.Email != "" {
		p.Contact = &xmlContact{Email: c.Email}
	}
	return p
}

func postalAddress(a model.Address, fallbackCountry string) xmlPostalAddress {
	country := a.CountryCode
	if country == "" {
		country = fallbackCountry
	}
	return xmlPostalAddress{
		StreetName: a.Street,
		CityName:   a.City,
		PostalZone: a.PostalCode,
		Country:    vat.NormalizeCountry(country),
	}
}

func paymentMeans(s *model.Seller, inv *model.InvoiceSnapshot) *xmlPaymentMeans {
	if s.IBAN == "" || inv.IsCreditNote() {
		return nil
	}
	return &xmlPaymentMeans{
		PaymentMeansCode: paymentMeansCode,
		PaymentID:        inv.Number,
		Account: xmlFinancialAccount{
			ID:       strings.ReplaceAll(s.IBAN, " ", ""),
			BranchID: s.BIC,
		},
	}
}

// taxCategory maps the scenario to UNCL5305; domestic lines at 0% are zero rated
func taxCategory(scenario vat.Scenario, rate decimal.Decimal) (string, decimal.Decimal) {
	cat := scenario.UBLCategory()
	if cat != "S" {
		return cat, money.Zero
	}
	if rate.IsZero() {
		return "Z", money.Zero
	}
	return cat, rate
}

func taxTotal(inv *model.InvoiceSnapshot, scenario vat.Scenario, currency string) xmlTaxTotal {
	type group struct {
		category string
		percent  decimal.Decimal
		base     decimal.Decimal
		tax      decimal.Decimal
	}

	var groups []*group
	index := make(map[string]*group)
	for _, vl := range inv.VATBreakdown() {
		cat, percent := taxCategory(scenario, vl.Rate)
		key := cat + "/" + money.FormatRate(percent)
		g, ok := index[key]
		if !ok {
			g = &group{category: cat, percent: percent, base: money.Zero, tax: money.Zero}
			index[key] = g
			groups = append(groups, g)
		}
		g.base = g.base.Add(vl.Base)
		g.tax = g.tax.Add(vl.Amount)
	}

	out := xmlTaxTotal{TaxAmount: amount(inv.TotalVAT, currency)}
	for _, g := range groups {
		tc := xmlTaxCategory{
			ID:        g.category,
			Percent:   money.FormatRate(g.percent),
			TaxScheme: "VAT",
		}
		if g.category != "S" && g.category != "Z" {
			tc.TaxExemptionReasonCode = scenario.ExemptionCode()
			tc.TaxExemptionReason = scenario.Mention().Text()
		}
		out.TaxSubtotal = append(out.TaxSubtotal, xmlTaxSubtotal{
			TaxableAmount: amount(g.base, currency),
			TaxAmount:     amount(g.tax, currency),
			TaxCategory:   tc,
		})
	}
	return out
}

func lineItem(item model.LineItem, scenario vat.Scenario) xmlItem {
	cat, percent := taxCategory(scenario, item.VATRate)
	return xmlItem{
		Name: item.Description,
		ClassifiedTaxCategory: xmlClassifiedTaxCategory{
			ID:        cat,
			Percent:   money.FormatRate(percent),
			TaxScheme: "VAT",
		},
	}
}

func lineTotal(inv *model.InvoiceSnapshot) decimal.Decimal {
	total := money.Zero
	for _, item := range inv.Items {
		total = total.Add(money.Round2(item.TotalHT.Abs()))
	}
	return total
}

func quantity(item model.LineItem) xmlQuantity {
	q := item.Quantity.Abs()
	if q.IsZero() {
		q = decimal.NewFromInt(1)
	}
	return xmlQuantity{Value: q.String(), UnitCode: unitCode(item.Unit)}
}

// unitCode maps free-text units to UN/ECE Rec 20
func unitCode(unit string) string {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "h", "hour", "hours", "heure", "heures":
		return "HUR"
	case "day", "days", "jour", "jours", "j":
		return "DAY"
	case "month", "mois":
		return "MON"
	case "km":
		return "KMT"
	case "kg":
		return "KGM"
	default:
		return "C62"
	}
}

func amount(d decimal.Decimal, currency string) xmlAmount {
	return xmlAmount{Value: money.Round2(d.Abs()).StringFixed(2), CurrencyID: currency}
}
