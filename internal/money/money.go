// Package money formats and parses integral cent amounts in the pt-BR
// display form ("R$ 1.234,56"). Both directions round-trip exactly.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatCents renders cents as a display string, e.g. 123456 -> "R$ 1.234,56".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	d := decimal.NewFromInt(cents).Div(hundred)
	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	out := "R$ " + groupThousands(parts[0]) + "," + parts[1]
	if neg {
		return "-" + out
	}
	return out
}

// ParseAmount converts a display string back to cents. It accepts the
// currency prefix, thousands separators and a comma decimal mark, and
// rejects amounts finer than one cent.
func ParseAmount(s string) (int64, error) {
	cleaned := strings.TrimSpace(s)
	neg := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")
	cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "R$"))
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, fmt.Errorf("parse amount %q: empty value", s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("parse amount %q: finer than one cent", s)
	}
	v := cents.IntPart()
	if neg {
		v = -v
	}
	return v, nil
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
