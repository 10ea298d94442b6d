package validation

// ValidateCVV passes when raw is 3 or 4 ASCII digits and nothing else.
func ValidateCVV(raw string) bool {
	if len(raw) != 3 && len(raw) != 4 {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}
