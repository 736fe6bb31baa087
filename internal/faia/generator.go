// Package faia generates the Luxembourg FAIA audit file (OECD SAF-T 2.01).
package faia

import (
	"encoding/xml"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	money "github.com/fakturlu/faktur-accounting/internal/decimal"
	"github.com/fakturlu/faktur-accounting/internal/model"
)

const (
	auditFileVersion = "2.01"
	xmlDate          = "2006-01-02"
	taxType          = "TVA"
)

// Software identifies the producing application in the header
type Software struct {
	CompanyName string
	ID          string
	Version     string
}

// DefaultSoftware is written when Input.Software is empty
var DefaultSoftware = Software{
	CompanyName: "faktur.lu",
	ID:          "faktur",
	Version:     "1.0",
}

// Input holds one audit period of a seller
type Input struct {
	Seller      *model.Seller
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
	Invoices    []model.InvoiceSnapshot
	Settings    model.AccountingSettings
	Software    Software
}

// Generate renders the audit file. The output depends on the input only;
// GeneratedAt is the single date not derived from the invoices.
func Generate(in Input) ([]byte, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	software := in.Software
	if software.ID == "" {
		software = DefaultSoftware
	}

	doc := xmlAuditFile{
		Xmlns: Namespace,
		Header: xmlHeader{
			AuditFileVersion:     auditFileVersion,
			AuditFileCountry:     "LU",
			AuditFileDateCreated: in.GeneratedAt.Format(xmlDate),
			SoftwareCompanyName:  software.CompanyName,
			SoftwareID:           software.ID,
			SoftwareVersion:      software.Version,
			Company:              buildCompany(in.Seller),
			DefaultCurrencyCode:  "EUR",
			SelectionCriteria: xmlSelectionCriteria{
				SelectionStartDate: in.From.Format(xmlDate),
				SelectionEndDate:   in.To.Format(xmlDate),
			},
			TaxAccountingBasis: "Invoice Accounting",
		},
		MasterFiles: xmlMasterFiles{
			Customers: buildCustomers(in.Invoices, in.Settings),
			TaxTable:  buildTaxTable(in.Invoices),
		},
		SourceDocuments: xmlSourceDocuments{
			SalesInvoices: buildSalesInvoices(in.Invoices, in.Settings),
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("faia: marshal audit file: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func validateInput(in Input) error {
	if in.Seller == nil {
		return model.NewValidationError("Seller", nil, "required", "seller is required")
	}
	if err := in.Seller.Validate(); err != nil {
		return err
	}
	if in.GeneratedAt.IsZero() {
		return model.NewValidationError("GeneratedAt", nil, "required", "generation date is required")
	}
	if in.To.Before(in.From) {
		return model.NewValidationError("To", in.To.Format(xmlDate), "gtefield", "period end before start")
	}
	return nil
}

func buildCompany(s *model.Seller) xmlCompany {
	c := xmlCompany{
		RegistrationNumber: lo.Ternary(s.RCSNumber != "", s.RCSNumber, s.Matricule),
		Name:               s.Name,
		Address:            buildAddress(s.Address, "LU"),
		TaxRegistration: xmlTaxRegistration{
			TaxRegistrationNumber: s.VATNumber,
			TaxType:               taxType,
			TaxNumber:             s.Matricule,
		},
	}
	if s.Phone != "" || s.Email != "" {
		c.Contact = &xmlContact{Telephone: s.Phone, Email: s.Email}
	}
	return c
}

func buildAddress(a model.Address, fallbackCountry string) xmlAddress {
	return xmlAddress{
		StreetName: a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    lo.Ternary(a.CountryCode != "", a.CountryCode, fallbackCountry),
	}
}

func buildCustomers(invoices []model.InvoiceSnapshot, settings model.AccountingSettings) []xmlCustomer {
	clients := lo.UniqBy(lo.Map(invoices, func(inv model.InvoiceSnapshot, _ int) model.ClientSnapshot {
		return inv.Client
	}), settings.ClientAccountingID)

	return lo.Map(clients, func(c model.ClientSnapshot, _ int) xmlCustomer {
		cust := xmlCustomer{
			CustomerID: settings.ClientAccountingID(c),
			AccountID:  settings.ClientsAccount,
			Name:       c.Name,
			Address:    buildAddress(c.Address, c.CountryCode),
		}
		if c.VATNumber != "" {
			cust.TaxRegistration = &xmlTaxRegistration{TaxRegistrationNumber: c.VATNumber}
		}
		return cust
	})
}

func buildTaxTable(invoices []model.InvoiceSnapshot) []xmlTaxEntry {
	var rates []decimal.Decimal
	for _, inv := range invoices {
		for _, item := range inv.Items {
			rates = append(rates, item.VATRate)
		}
	}
	rates = lo.UniqBy(rates, money.FormatRate)
	if len(rates) == 0 {
		return nil
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].GreaterThan(rates[j]) })

	details := lo.Map(rates, func(rate decimal.Decimal, _ int) xmlTaxCodeDetail {
		return xmlTaxCodeDetail{
			TaxCode:       taxCode(rate),
			Description:   fmt.Sprintf("TVA %s%%", money.FormatRate(rate)),
			TaxPercentage: money.Round2(rate).StringFixed(2),
			Country:       "LU",
		}
	})
	return []xmlTaxEntry{{
		TaxType:        taxType,
		Description:    "Taxe sur la valeur ajoutée",
		TaxCodeDetails: details,
	}}
}

func flipIndicator(indicator string) string {
	if indicator == "D" {
		return "C"
	}
	return "D"
}

func buildSalesInvoices(invoices []model.InvoiceSnapshot, settings model.AccountingSettings) xmlSalesInvoices {
	debit, credit := money.Zero, money.Zero
	out := make([]xmlInvoice, 0, len(invoices))

	for i := range invoices {
		inv := &invoices[i]
		indicator := "C"
		kind := "Facture"
		if inv.IsCreditNote() {
			indicator = "D"
			kind = "Avoir"
		}

		x := xmlInvoice{
			InvoiceNo:     inv.Number,
			CustomerID:    settings.ClientAccountingID(inv.Client),
			Period:        int(inv.IssuedAt.Month()),
			PeriodYear:    inv.IssuedAt.Year(),
			InvoiceDate:   inv.IssuedAt.Format(xmlDate),
			InvoiceType:   kind,
			GLPostingDate: inv.IssuedAt.Format(xmlDate),
		}

		sign := inv.Sign()
		for n, item := range inv.Items {
			amount := money.Round2(item.TotalHT.Abs())
			side := indicator
			if item.TotalHT.Sign()*sign < 0 {
				side = flipIndicator(indicator)
			}
			if side == "D" {
				debit = debit.Add(amount)
			} else {
				credit = credit.Add(amount)
			}

			x.Lines = append(x.Lines, xmlLine{
				LineNumber:           n + 1,
				AccountID:            settings.SalesAccount,
				Quantity:             item.Quantity.Abs().String(),
				UnitPrice:            money.Round2(item.UnitPrice).StringFixed(2),
				TaxPointDate:         inv.IssuedAt.Format(xmlDate),
				Description:          item.Description,
				InvoiceLineAmount:    xmlAmount{Amount: amount.StringFixed(2)},
				DebitCreditIndicator: side,
				TaxInformation:       taxInformation(item.VATRate, item.TotalHT, item.TotalVAT),
			})
		}

		x.DocumentTotals = xmlDocumentTotals{
			TaxInformationTotals: lo.Map(inv.VATBreakdown(), func(vl model.VATLine, _ int) xmlTaxInformation {
				return taxInformation(vl.Rate, vl.Base, vl.Amount)
			}),
			NetTotal:   money.Round2(inv.TotalHT.Abs()).StringFixed(2),
			GrossTotal: money.Round2(inv.TotalTTC.Abs()).StringFixed(2),
		}
		out = append(out, x)
	}

	return xmlSalesInvoices{
		NumberOfEntries: len(out),
		TotalDebit:      debit.StringFixed(2),
		TotalCredit:     credit.StringFixed(2),
		Invoices:        out,
	}
}

func taxInformation(rate, base, amount decimal.Decimal) xmlTaxInformation {
	return xmlTaxInformation{
		TaxType:       taxType,
		TaxCode:       taxCode(rate),
		TaxPercentage: money.Round2(rate).StringFixed(2),
		TaxBase:       money.Round2(base.Abs()).StringFixed(2),
		TaxAmount:     xmlAmount{Amount: money.Round2(amount.Abs()).StringFixed(2)},
	}
}

func taxCode(rate decimal.Decimal) string {
	return taxType + money.FormatRate(rate)
}
