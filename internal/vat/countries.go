package vat

import "strings"

// HomeCountry is the seller's member state
const HomeCountry = "LU"

var euCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "DK": {},
	"EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {}, "EL": {}, "HU": {},
	"IE": {}, "IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {},
	"PL": {}, "PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "SE": {},
}

// NormalizeCountry trims and upper-cases an ISO-2 code
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsEUCountry reports EU membership, Luxembourg included
func IsEUCountry(code string) bool {
	_, ok := euCountries[NormalizeCountry(code)]
	return ok
}

// IsIntraEUCountry reports EU membership excluding the home country
func IsIntraEUCountry(code string) bool {
	return isIntraEU(code, HomeCountry)
}

func isIntraEU(code, home string) bool {
	code = NormalizeCountry(code)
	return IsEUCountry(code) && code != home
}
