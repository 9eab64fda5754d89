package render

import (
	"fmt"
	"strings"
)

// formatMoney renders an amount with two decimal places and thousands
// separators, e.g. 1234567.5 -> "1,234,567.50". Zero renders as "0.00".
func formatMoney(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

// formatAmount prefixes a money value with its currency code when one is
// set.
func formatAmount(currency string, amount float64) string {
	if currency == "" {
		return formatMoney(amount)
	}
	return currency + " " + formatMoney(amount)
}

// formatQuantity drops a trailing ".00" from whole quantities.
func formatQuantity(q float64) string {
	s := fmt.Sprintf("%.2f", q)
	return strings.TrimSuffix(s, ".00")
}
