package phone

import "strings"

// Normalize converts a raw phone number into canonical E.164 form.
// Ten-digit numbers are assumed to be US/Canada and get a +1 prefix;
// eleven digits with a leading 1 keep it; an already international number
// with a leading + passes through. Anything else normalizes to "" (null).
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && d[0] == '1':
		return "+" + d
	case strings.HasPrefix(trimmed, "+") && len(d) >= 11 && len(d) <= 15:
		return "+" + d
	default:
		return ""
	}
}
