package utils

import "strings"

// NormalizePhone strips formatting noise from an imported phone number so
// the same number always compares equal regardless of how the address book
// formatted it. A leading "+" survives, everything non-numeric goes.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
