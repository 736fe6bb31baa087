package export

import (
	"strings"
	"time"
)

const (
	csvSeparator = ";"
	crlf         = "\r\n"
	csvDate      = "02/01/2006"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvField quotes a value only when it contains the separator, a quote or a line break
func csvField(s string) string {
	if !strings.ContainsAny(s, ";\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeCSVRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(csvSeparator)
		}
		b.WriteString(csvField(f))
	}
	b.WriteString(crlf)
}

func csvDateOrEmpty(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(csvDate)
}
