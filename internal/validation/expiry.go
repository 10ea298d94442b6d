package validation

import (
	"fmt"
	"strings"
	"time"
)

// Expiry is a parsed MM/YY value.
type Expiry struct {
	Month int
	Year  int
}

// ParseExpiry parses "MM/YY". Both parts must be exactly two ASCII digits and the
// month must be 1-12. The year is taken to be in the 2000s.
func ParseExpiry(raw string) (Expiry, bool) {
	parts := strings.Split(raw, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return Expiry{}, false
	}

	month, ok := twoDigits(parts[0])
	if !ok || month < 1 || month > 12 {
		return Expiry{}, false
	}
	year, ok := twoDigits(parts[1])
	if !ok {
		return Expiry{}, false
	}

	return Expiry{Month: month, Year: 2000 + year}, true
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// NotBefore reports whether the expiry month is the month of now or later.
func (e Expiry) NotBefore(now time.Time) bool {
	if e.Year != now.Year() {
		return e.Year > now.Year()
	}
	return e.Month >= int(now.Month())
}

// String formats the expiry back to MM/YY.
func (e Expiry) String() string {
	return fmt.Sprintf("%02d/%02d", e.Month, e.Year%100)
}

// ExpiryValidator checks expiry strings against a clock.
type ExpiryValidator struct {
	Now func() time.Time
}

// NewExpiryValidator returns a validator on the wall clock.
func NewExpiryValidator() *ExpiryValidator {
	return &ExpiryValidator{Now: time.Now}
}

// Validate parses raw and checks that the card has not yet expired.
func (v *ExpiryValidator) Validate(raw string) bool {
	exp, ok := ParseExpiry(raw)
	if !ok {
		return false
	}
	now := time.Now
	if v != nil && v.Now != nil {
		now = v.Now
	}
	return exp.NotBefore(now())
}

// ValidateExpiry validates raw against the current wall-clock month.
func ValidateExpiry(raw string) bool {
	return NewExpiryValidator().Validate(raw)
}
