package peppol

import "strings"

// permanentMarkers are error fragments reported by access points for
// documents that will never be accepted as sent.
var permanentMarkers = []string{
	"recipient not found",
	"recipient_not_found",
	"invalid document",
	"invalid_document",
	"validation failed",
	"schema validation",
	"unknown receiver",
	"not registered",
}

// IsPermanentError reports whether an access point message describes a
// failure that retrying cannot fix
func IsPermanentError(message string) bool {
	msg := strings.ToLower(message)
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
