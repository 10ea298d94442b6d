package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{name: "Valid Visa", number: "4532015112830366", want: true},
		{name: "Altered check digit", number: "4532015112830367", want: false},
		{name: "Too short", number: "123", want: false},
		{name: "Empty", number: "", want: false},
		{name: "Only separators", number: " - - ", want: false},
		{name: "Spaces stripped", number: "4532 0151 1283 0366", want: true},
		{name: "Hyphens stripped", number: "4532-0151-1283-0366", want: true},
		{name: "Letters stripped", number: "4532x0151y1283z0366", want: true},
		{name: "Amex 15 digits", number: "378282246310005", want: true},
		{name: "Mastercard", number: "5555555555554444", want: true},
		{name: "Minimum length 13", number: "4222222222222", want: true},
		{name: "Maximum length 19", number: "4000000000000000006", want: true},
		{name: "Luhn valid but 12 digits", number: "000000000000", want: false},
		{name: "Luhn valid but 20 digits", number: "40000000000000000002", want: false},
		{name: "Luhn valid but 11 digits", number: "79927398713", want: false},
		{name: "Non-ASCII digits ignored", number: "４532015112830366", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCardNumber(tt.number))
		})
	}
}

func TestValidateCardNumber_StrippingIsTransparent(t *testing.T) {
	assert.Equal(t, ValidateCardNumber("4532015112830366"), ValidateCardNumber("4532 0151 1283 0366"))
	assert.Equal(t, ValidateCardNumber("4532015112830367"), ValidateCardNumber("4532-0151-1283-0367"))
}

func TestLuhnValid(t *testing.T) {
	assert.True(t, LuhnValid("79927398713"))
	assert.False(t, LuhnValid("79927398710"))
	assert.False(t, LuhnValid(""))
	assert.False(t, LuhnValid("7992 7398 713"))
}

func TestLuhnValid_SingleDigitChangeIsDetected(t *testing.T) {
	valid := "4532015112830366"
	for i := 0; i < len(valid); i++ {
		for d := byte('0'); d <= '9'; d++ {
			if d == valid[i] {
				continue
			}
			mutated := []byte(valid)
			mutated[i] = d
			assert.False(t, LuhnValid(string(mutated)), "mutation at %d to %c", i, d)
		}
	}
}

func TestNormalizeCardNumber(t *testing.T) {
	assert.Equal(t, "4532015112830366", NormalizeCardNumber(" 4532-0151 1283/0366 "))
	assert.Equal(t, "", NormalizeCardNumber("abc"))
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "************0366", MaskCardNumber("4532015112830366"))
	assert.Equal(t, "***", MaskCardNumber("123"))
	assert.Equal(t, "****", MaskCardNumber("1234"))
	assert.Equal(t, "*2345", MaskCardNumber("12345"))
}

func fixedClock(year int, month time.Month) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestExpiryValidator_Validate(t *testing.T) {
	v := &ExpiryValidator{Now: fixedClock(2025, time.June)}

	tests := []struct {
		name   string
		expiry string
		want   bool
	}{
		{name: "Current month", expiry: "06/25", want: true},
		{name: "Previous month", expiry: "05/25", want: false},
		{name: "Next month", expiry: "07/25", want: true},
		{name: "Later year earlier month", expiry: "01/26", want: true},
		{name: "Earlier year later month", expiry: "12/24", want: false},
		{name: "Month 13", expiry: "13/25", want: false},
		{name: "Month 00", expiry: "00/25", want: false},
		{name: "Single digit month", expiry: "6/25", want: false},
		{name: "Four digit year", expiry: "06/2025", want: false},
		{name: "No separator", expiry: "0625", want: false},
		{name: "Too many parts", expiry: "06/25/01", want: false},
		{name: "Letters", expiry: "ab/cd", want: false},
		{name: "Signed month", expiry: "+6/25", want: false},
		{name: "Padded month", expiry: " 6/25", want: false},
		{name: "Empty", expiry: "", want: false},
		{name: "Dash separator", expiry: "06-25", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.expiry))
		})
	}
}

func TestExpiryValidator_YearBoundary(t *testing.T) {
	v := &ExpiryValidator{Now: fixedClock(2025, time.January)}

	assert.True(t, v.Validate("01/25"))
	assert.False(t, v.Validate("12/24"))
}

func TestValidateExpiry_WallClock(t *testing.T) {
	now := time.Now()
	current := Expiry{Month: int(now.Month()), Year: now.Year()}
	past := Expiry{Month: int(now.AddDate(0, -1, -now.Day()+1).Month()), Year: now.AddDate(0, -1, -now.Day()+1).Year()}

	assert.True(t, ValidateExpiry(current.String()))
	assert.False(t, ValidateExpiry(past.String()))
}

func TestParseExpiry(t *testing.T) {
	exp, ok := ParseExpiry("09/31")
	assert.True(t, ok)
	assert.Equal(t, Expiry{Month: 9, Year: 2031}, exp)
	assert.Equal(t, "09/31", exp.String())

	_, ok = ParseExpiry("9/31")
	assert.False(t, ok)
}

func TestExpiryValidator_NilClock(t *testing.T) {
	var v *ExpiryValidator
	assert.False(t, v.Validate("01/20"))
	assert.True(t, (&ExpiryValidator{}).Validate("12/99"))
}

func TestValidateCVV(t *testing.T) {
	tests := []struct {
		cvv  string
		want bool
	}{
		{cvv: "12", want: false},
		{cvv: "123", want: true},
		{cvv: "1234", want: true},
		{cvv: "12a", want: false},
		{cvv: "12345", want: false},
		{cvv: "", want: false},
		{cvv: " 123", want: false},
		{cvv: "12 3", want: false},
		{cvv: "١٢٣", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.cvv, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCVV(tt.cvv))
		})
	}
}
