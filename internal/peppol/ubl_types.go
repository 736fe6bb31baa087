package peppol

import "encoding/xml"

const (
	nsInvoice    = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCreditNote = "urn:oasis:names:specification:ubl:schema:xsd:CreditNote-2"
	nsCac        = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCbc        = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

type xmlInvoice struct {
	XMLName xml.Name `xml:"Invoice"`
	xmlHeader
	InvoiceTypeCode string `xml:"cbc:InvoiceTypeCode"`
	xmlBody
	Lines []xmlInvoiceLine `xml:"cac:InvoiceLine"`
}

type xmlCreditNote struct {
	XMLName xml.Name `xml:"CreditNote"`
	xmlHeader
	CreditNoteTypeCode string `xml:"cbc:CreditNoteTypeCode"`
	xmlBody
	Lines []xmlCreditNoteLine `xml:"cac:CreditNoteLine"`
}

type xmlHeader struct {
	Xmlns           string `xml:"xmlns,attr"`
	Cac             string `xml:"xmlns:cac,attr"`
	Cbc             string `xml:"xmlns:cbc,attr"`
	CustomizationID string `xml:"cbc:CustomizationID"`
	ProfileID       string `xml:"cbc:ProfileID"`
	ID              string `xml:"cbc:ID"`
	IssueDate       string `xml:"cbc:IssueDate"`
	DueDate         string `xml:"cbc:DueDate,omitempty"`
}

type xmlBody struct {
	Note                 string           `xml:"cbc:Note,omitempty"`
	DocumentCurrencyCode string           `xml:"cbc:DocumentCurrencyCode"`
	BuyerReference       string           `xml:"cbc:BuyerReference"`
	SupplierParty        xmlPartyWrapper  `xml:"cac:AccountingSupplierParty"`
	CustomerParty        xmlPartyWrapper  `xml:"cac:AccountingCustomerParty"`
	PaymentMeans         *xmlPaymentMeans `xml:"cac:PaymentMeans,omitempty"`
	TaxTotal             xmlTaxTotal      `xml:"cac:TaxTotal"`
	LegalMonetaryTotal   xmlMonetaryTotal `xml:"cac:LegalMonetaryTotal"`
}

type xmlPartyWrapper struct {
	Party xmlParty `xml:"cac:Party"`
}

type xmlEndpointID struct {
	Value    string `xml:",chardata"`
	SchemeID string `xml:"schemeID,attr"`
}

type xmlParty struct {
	EndpointID     xmlEndpointID      `xml:"cbc:EndpointID"`
	PartyName      string             `xml:"cac:PartyName>cbc:Name"`
	PostalAddress  xmlPostalAddress   `xml:"cac:PostalAddress"`
	PartyTaxScheme *xmlPartyTaxScheme `xml:"cac:PartyTaxScheme,omitempty"`
	LegalEntity    xmlLegalEntity     `xml:"cac:PartyLegalEntity"`
	Contact        *xmlContact        `xml:"cac:Contact,omitempty"`
}

type xmlPostalAddress struct {
	StreetName string `xml:"cbc:StreetName,omitempty"`
	CityName   string `xml:"cbc:CityName,omitempty"`
	PostalZone string `xml:"cbc:PostalZone,omitempty"`
	Country    string `xml:"cac:Country>cbc:IdentificationCode"`
}

type xmlPartyTaxScheme struct {
	CompanyID string `xml:"cbc:CompanyID"`
	TaxScheme string `xml:"cac:TaxScheme>cbc:ID"`
}

type xmlLegalEntity struct {
	RegistrationName string `xml:"cbc:RegistrationName"`
	CompanyID        string `xml:"cbc:CompanyID,omitempty"`
}

type xmlContact struct {
	Telephone string `xml:"cbc:Telephone,omitempty"`
	Email     string `xml:"cbc:ElectronicMail,omitempty"`
}

type xmlPaymentMeans struct {
	PaymentMeansCode string              `xml:"cbc:PaymentMeansCode"`
	PaymentID        string              `xml:"cbc:PaymentID"`
	Account          xmlFinancialAccount `xml:"cac:PayeeFinancialAccount"`
}

type xmlFinancialAccount struct {
	ID       string `xml:"cbc:ID"`
	BranchID string `xml:"cac:FinancialInstitutionBranch>cbc:ID,omitempty"`
}

type xmlAmount struct {
	Value      string `xml:",chardata"`
	CurrencyID string `xml:"currencyID,attr"`
}

type xmlQuantity struct {
	Value    string `xml:",chardata"`
	UnitCode string `xml:"unitCode,attr"`
}

type xmlTaxTotal struct {
	TaxAmount   xmlAmount        `xml:"cbc:TaxAmount"`
	TaxSubtotal []xmlTaxSubtotal `xml:"cac:TaxSubtotal"`
}

type xmlTaxSubtotal struct {
	TaxableAmount xmlAmount      `xml:"cbc:TaxableAmount"`
	TaxAmount     xmlAmount      `xml:"cbc:TaxAmount"`
	TaxCategory   xmlTaxCategory `xml:"cac:TaxCategory"`
}

type xmlTaxCategory struct {
	ID                     string `xml:"cbc:ID"`
	Percent                string `xml:"cbc:Percent"`
	TaxExemptionReasonCode string `xml:"cbc:TaxExemptionReasonCode,omitempty"`
	TaxExemptionReason     string `xml:"cbc:TaxExemptionReason,omitempty"`
	TaxScheme              string `xml:"cac:TaxScheme>cbc:ID"`
}

type xmlClassifiedTaxCategory struct {
	ID        string `xml:"cbc:ID"`
	Percent   string `xml:"cbc:Percent"`
	TaxScheme string `xml:"cac:TaxScheme>cbc:ID"`
}

type xmlMonetaryTotal struct {
	LineExtensionAmount xmlAmount `xml:"cbc:LineExtensionAmount"`
	TaxExclusiveAmount  xmlAmount `xml:"cbc:TaxExclusiveAmount"`
	TaxInclusiveAmount  xmlAmount `xml:"cbc:TaxInclusiveAmount"`
	PayableAmount       xmlAmount `xml:"cbc:PayableAmount"`
}

type xmlInvoiceLine struct {
	ID                  string      `xml:"cbc:ID"`
	InvoicedQuantity    xmlQuantity `xml:"cbc:InvoicedQuantity"`
	LineExtensionAmount xmlAmount   `xml:"cbc:LineExtensionAmount"`
	Item                xmlItem     `xml:"cac:Item"`
	Price               xmlPrice    `xml:"cac:Price"`
}

type xmlCreditNoteLine struct {
	ID                  string      `xml:"cbc:ID"`
	CreditedQuantity    xmlQuantity `xml:"cbc:CreditedQuantity"`
	LineExtensionAmount xmlAmount   `xml:"cbc:LineExtensionAmount"`
	Item                xmlItem     `xml:"cac:Item"`
	Price               xmlPrice    `xml:"cac:Price"`
}

type xmlItem struct {
	Description           string                   `xml:"cbc:Description,omitempty"`
	Name                  string                   `xml:"cbc:Name"`
	ClassifiedTaxCategory xmlClassifiedTaxCategory `xml:"cac:ClassifiedTaxCategory"`
}

type xmlPrice struct {
	PriceAmount xmlAmount `xml:"cbc:PriceAmount"`
}
