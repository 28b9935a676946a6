package utils

import (
	"regexp"
	"strings"
)

// ComorosDialCode is the international prefix of Comoros numbers.
const ComorosDialCode = "+269"

var comorosPhonePattern = regexp.MustCompile(`^(?:\+?269)?(\d{7})$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// NormalizeComorosPhone returns the number in +269XXXXXXX form. The dial code
// is optional on input and separators are ignored.
func NormalizeComorosPhone(raw string) (string, bool) {
	cleaned := phoneSeparators.Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(cleaned, "00")
	match := comorosPhonePattern.FindStringSubmatch(cleaned)
	if match == nil {
		return "", false
	}
	return ComorosDialCode + match[1], true
}
