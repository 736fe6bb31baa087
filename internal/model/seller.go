package model

// VATRegime is the seller's VAT status
type VATRegime string

const (
	// VATRegimeFranchise is the small-business exemption (art. 57 LTVA)
	VATRegimeFranchise VATRegime = "franchise"
	// VATRegimeAssujetti is the standard VAT-registered regime
	VATRegimeAssujetti VATRegime = "assujetti"
)

// Seller is the tenant issuing invoices
type Seller struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required"`
	VATRegime VATRegime `json:"vat_regime" validate:"required,oneof=franchise assujetti"`
	VATNumber string    `json:"vat_number,omitempty"`
	RCSNumber string    `json:"rcs_number,omitempty"`
	Matricule string    `json:"matricule,omitempty"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string    `json:"phone,omitempty"`
	PeppolID  string    `json:"peppol_id,omitempty"`
	IBAN      string    `json:"iban,omitempty"`
	BIC       string    `json:"bic,omitempty"`
	Address   Address   `json:"address"`
}

// IsFranchise reports whether the seller is VAT exempt
func (s *Seller) IsFranchise() bool {
	return s.VATRegime == VATRegimeFranchise
}

// Validate checks the seller profile
func (s *Seller) Validate() error {
	return validateStruct(s)
}
