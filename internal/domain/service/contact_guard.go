package service

import (
	"regexp"
	"sort"
	"strings"

	"comoresmarket/pkg/errors"
)

const (
	// ContactGuardWindow is how many previous text messages of the sender
	// are joined with the candidate.
	ContactGuardWindow = 5

	// ContactGuardMinDigits is the shortest digit run treated as a phone
	// number.
	ContactGuardMinDigits = 7
)

// frenchNumbers maps spelled-out numbers up to thirty to their digits.
var frenchNumbers = map[string]string{
	"zero": "0", "zéro": "0", "un": "1", "une": "1", "deux": "2", "trois": "3",
	"quatre": "4", "cinq": "5", "six": "6", "sept": "7", "huit": "8",
	"neuf": "9", "dix": "10", "onze": "11", "douze": "12", "treize": "13",
	"quatorze": "14", "quinze": "15", "seize": "16", "dix-sept": "17",
	"dix-huit": "18", "dix-neuf": "19", "vingt": "20", "vingt-et-un": "21",
	"vingt et un": "21", "vingt-deux": "22", "vingt-trois": "23",
	"vingt-quatre": "24", "vingt-cinq": "25", "vingt-six": "26",
	"vingt-sept": "27", "vingt-huit": "28", "vingt-neuf": "29", "trente": "30",
}

var (
	numberWordPattern = buildNumberWordPattern()
	nonDigitPattern   = regexp.MustCompile(`[^0-9]+`)
	digitRunPattern   = regexp.MustCompile(`[0-9]{7,}`)
)

func buildNumberWordPattern() *regexp.Regexp {
	words := make([]string, 0, len(frenchNumbers))
	for w := range frenchNumbers {
		words = append(words, w)
	}
	// Longest first so "dix-sept" wins over "dix".
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?:^|[^\p{L}])(` + strings.Join(quoted, "|") + `)(?:[^\p{L}]|$)`)
}

// NormalizeDigits lower-cases text, replaces French number words with digits
// and drops every other character.
func NormalizeDigits(text string) string {
	text = strings.ToLower(text)
	text = replaceNumberWords(text)
	return nonDigitPattern.ReplaceAllString(text, "")
}

func replaceNumberWords(text string) string {
	var b strings.Builder
	rest := text
	for {
		loc := numberWordPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		start, end := loc[2], loc[3]
		b.WriteString(rest[:start])
		b.WriteString(frenchNumbers[rest[start:end]])
		rest = rest[end:]
	}
}

// ContainsContactDetails reports whether the candidate, joined with the
// previous messages of the sender, spells out a phone number.
func ContainsContactDetails(previous []string, candidate string) bool {
	if len(previous) > ContactGuardWindow {
		previous = previous[len(previous)-ContactGuardWindow:]
	}

	var joined strings.Builder
	for _, p := range previous {
		joined.WriteString(NormalizeDigits(p))
	}
	joined.WriteString(NormalizeDigits(candidate))

	return digitRunPattern.MatchString(joined.String())
}

// CheckOutboundMessage returns CONTACT_DETAILS_BLOCKED when the message
// would leak a phone number.
func CheckOutboundMessage(previous []string, candidate string) error {
	if ContainsContactDetails(previous, candidate) {
		return errors.Unprocessable("CONTACT_DETAILS_BLOCKED",
			"Pour votre sécurité, l'échange de coordonnées n'est pas autorisé dans la messagerie")
	}
	return nil
}
