package faia

import "encoding/xml"

// Namespace is the OECD SAF-T namespace used by FAIA 2.01
const Namespace = "urn:OECD:StandardAuditFile-Taxation/2.00"

type xmlAuditFile struct {
	XMLName         xml.Name           `xml:"AuditFile"`
	Xmlns           string             `xml:"xmlns,attr"`
	Header          xmlHeader          `xml:"Header"`
	MasterFiles     xmlMasterFiles     `xml:"MasterFiles"`
	SourceDocuments xmlSourceDocuments `xml:"SourceDocuments"`
}

type xmlHeader struct {
	AuditFileVersion     string               `xml:"AuditFileVersion"`
	AuditFileCountry     string               `xml:"AuditFileCountry"`
	AuditFileDateCreated string               `xml:"AuditFileDateCreated"`
	SoftwareCompanyName  string               `xml:"SoftwareCompanyName"`
	SoftwareID           string               `xml:"SoftwareID"`
	SoftwareVersion      string               `xml:"SoftwareVersion"`
	Company              xmlCompany           `xml:"Company"`
	DefaultCurrencyCode  string               `xml:"DefaultCurrencyCode"`
	SelectionCriteria    xmlSelectionCriteria `xml:"SelectionCriteria"`
	TaxAccountingBasis   string               `xml:"TaxAccountingBasis"`
}

type xmlCompany struct {
	RegistrationNumber string             `xml:"RegistrationNumber"`
	Name               string             `xml:"Name"`
	Address            xmlAddress         `xml:"Address"`
	Contact            *xmlContact        `xml:"Contact,omitempty"`
	TaxRegistration    xmlTaxRegistration `xml:"TaxRegistration"`
}

type xmlAddress struct {
	StreetName string `xml:"StreetName,omitempty"`
	City       string `xml:"City"`
	PostalCode string `xml:"PostalCode,omitempty"`
	Country    string `xml:"Country"`
}

type xmlContact struct {
	Telephone string `xml:"Telephone,omitempty"`
	Email     string `xml:"Email,omitempty"`
}

type xmlTaxRegistration struct {
	TaxRegistrationNumber string `xml:"TaxRegistrationNumber"`
	TaxType               string `xml:"TaxType,omitempty"`
	TaxNumber             string `xml:"TaxNumber,omitempty"`
}

type xmlSelectionCriteria struct {
	SelectionStartDate string `xml:"SelectionStartDate"`
	SelectionEndDate   string `xml:"SelectionEndDate"`
}

type xmlMasterFiles struct {
	Customers []xmlCustomer `xml:"Customers>Customer"`
	TaxTable  []xmlTaxEntry `xml:"TaxTable>TaxTableEntry"`
}

type xmlCustomer struct {
	CustomerID      string              `xml:"CustomerID"`
	AccountID       string              `xml:"AccountID"`
	Name            string              `xml:"Name"`
	Address         xmlAddress          `xml:"Address"`
	TaxRegistration *xmlTaxRegistration `xml:"TaxRegistration,omitempty"`
}

type xmlTaxEntry struct {
	TaxType        string             `xml:"TaxType"`
	Description    string             `xml:"Description"`
	TaxCodeDetails []xmlTaxCodeDetail `xml:"TaxCodeDetails"`
}

type xmlTaxCodeDetail struct {
	TaxCode       string `xml:"TaxCode"`
	Description   string `xml:"Description"`
	TaxPercentage string `xml:"TaxPercentage"`
	Country       string `xml:"Country"`
}

type xmlSourceDocuments struct {
	SalesInvoices xmlSalesInvoices `xml:"SalesInvoices"`
}

type xmlSalesInvoices struct {
	NumberOfEntries int          `xml:"NumberOfEntries"`
	TotalDebit      string       `xml:"TotalDebit"`
	TotalCredit     string       `xml:"TotalCredit"`
	Invoices        []xmlInvoice `xml:"Invoice"`
}

type xmlInvoice struct {
	InvoiceNo      string            `xml:"InvoiceNo"`
	CustomerID     string            `xml:"CustomerInfo>CustomerID"`
	Period         int               `xml:"Period"`
	PeriodYear     int               `xml:"PeriodYear"`
	InvoiceDate    string            `xml:"InvoiceDate"`
	InvoiceType    string            `xml:"InvoiceType"`
	GLPostingDate  string            `xml:"GLPostingDate"`
	Lines          []xmlLine         `xml:"Line"`
	DocumentTotals xmlDocumentTotals `xml:"DocumentTotals"`
}

type xmlLine struct {
	LineNumber           int               `xml:"LineNumber"`
	AccountID            string            `xml:"AccountID"`
	Quantity             string            `xml:"Quantity"`
	UnitPrice            string            `xml:"UnitPrice"`
	TaxPointDate         string            `xml:"TaxPointDate"`
	Description          string            `xml:"Description"`
	InvoiceLineAmount    xmlAmount         `xml:"InvoiceLineAmount"`
	DebitCreditIndicator string            `xml:"DebitCreditIndicator"`
	TaxInformation       xmlTaxInformation `xml:"TaxInformation"`
}

type xmlAmount struct {
	Amount string `xml:"Amount"`
}

type xmlTaxInformation struct {
	TaxType       string    `xml:"TaxType"`
	TaxCode       string    `xml:"TaxCode"`
	TaxPercentage string    `xml:"TaxPercentage"`
	TaxBase       string    `xml:"TaxBase"`
	TaxAmount     xmlAmount `xml:"TaxAmount"`
}

type xmlDocumentTotals struct {
	TaxInformationTotals []xmlTaxInformation `xml:"TaxInformationTotals"`
	NetTotal             string              `xml:"NetTotal"`
	GrossTotal           string              `xml:"GrossTotal"`
}
