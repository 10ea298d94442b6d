// Package validation holds the pure format and checksum rules for card fields.
package validation

import (
	"strings"
)

// Card number length bounds after normalisation
const (
	MinCardDigits = 13
	MaxCardDigits = 19
)

// NormalizeCardNumber drops every character that is not an ASCII digit.
func NormalizeCardNumber(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ValidateCardNumber normalises raw and checks its length and Luhn checksum.
func ValidateCardNumber(raw string) bool {
	digits := NormalizeCardNumber(raw)
	if len(digits) < MinCardDigits || len(digits) > MaxCardDigits {
		return false
	}
	return LuhnValid(digits)
}

// LuhnValid reports whether a string of ASCII digits passes the Luhn checksum.
// Anything else, including the empty string, is rejected.
func LuhnValid(digits string) bool {
	if digits == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}

// MaskCardNumber keeps the last four digits, for logs and display.
func MaskCardNumber(digits string) string {
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
