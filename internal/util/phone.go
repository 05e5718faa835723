package util

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`[^\d\+]+`)

// NormalizePhone tries to normalize user input into E.164-like format.
// Bare 10-digit Indian mobile numbers get the +91 country code.
func NormalizePhone(raw string) string {
	s := nonDigits.ReplaceAllString(strings.TrimSpace(raw), "")

	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "+"):
		return s
	case strings.HasPrefix(s, "00"):
		return "+" + s[2:]
	case strings.HasPrefix(s, "0") && len(s) == 11:
		return "+91" + s[1:]
	case len(s) == 10 && strings.ContainsAny(s[:1], "6789"):
		return "+91" + s
	case strings.HasPrefix(s, "91") && len(s) == 12:
		return "+" + s
	}
	return s
}
