package vat

import (
	"regexp"
	"strings"
)

var vatNumberRe = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9-]{2,13}$`)

// NormalizeVATNumber upper-cases and strips spaces and dots
func NormalizeVATNumber(number string) string {
	number = strings.ToUpper(strings.TrimSpace(number))
	return strings.NewReplacer(" ", "", ".", "").Replace(number)
}

// ValidateVATNumber checks the country-prefixed format. An empty number is
// valid since the field is optional. When expectedCountry is set the prefix
// must match it; Greek numbers may carry either GR or their EL prefix.
func ValidateVATNumber(number, expectedCountry string) bool {
	number = NormalizeVATNumber(number)
	if number == "" {
		return true
	}
	if !vatNumberRe.MatchString(number) {
		return false
	}

	expected := NormalizeCountry(expectedCountry)
	if expected == "" {
		return true
	}
	prefix := number[:2]
	if expected == "GR" || expected == "EL" {
		return prefix == "GR" || prefix == "EL"
	}
	return prefix == expected
}
